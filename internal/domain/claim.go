package domain

import (
	"strings"
	"time"
)

// ClaimRecord is the normalized claim produced by the upstream extraction
// collaborator. Numeric fields default to 0 when the extractor could not
// read them; dependent checks are skipped rather than failed.
type ClaimRecord struct {
	// Identity
	ClaimID      string `json:"claim_id"`
	TenantID     string `json:"tenant_id,omitempty"`
	PolicyNumber string `json:"policy_number"`
	PatientName  string `json:"patient_name"`
	HospitalName string `json:"hospital_name,omitempty"`
	TreatingDoc  string `json:"treating_doctor,omitempty"`

	// Medical
	Diagnosis         string   `json:"diagnosis"`
	TreatmentDuration int      `json:"treatment_duration"` // days
	Procedures        []string `json:"procedures"`
	Medications       []string `json:"medications"`
	RoomType          string   `json:"room_type"`

	// Financial (currency amounts; 0 = not extracted)
	TotalClaimAmount   float64 `json:"total_claim_amount"`
	BilledAmount       float64 `json:"billed_amount"` // final hospital bill, separately sourced
	RoomRent           float64 `json:"room_rent"`
	DoctorFees         float64 `json:"doctor_fees"`
	MedicineCosts      float64 `json:"medicine_costs"`
	InvestigationCosts float64 `json:"investigation_costs"`
	SurgeryCosts       float64 `json:"surgery_costs"`

	// Policy
	PolicyPeriod  string   `json:"policy_period"` // "START to END"
	AdmissionDate string   `json:"admission_date"`
	DischargeDate string   `json:"discharge_date,omitempty"`
	RoomRentLimit float64  `json:"room_rent_limit"` // 0 = use plan default
	PlanTier      PlanTier `json:"plan_tier,omitempty"`

	// Document names attached to the claim (for mandatory-document checks)
	AssociatedFiles []string `json:"associated_files,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}

// AllText joins every free-text field of the claim, lowercased.
// Used by the exclusion-keyword scan, which must see text anywhere
// in the claim, not just the diagnosis.
func (c *ClaimRecord) AllText() string {
	parts := []string{
		c.Diagnosis, c.PatientName, c.HospitalName, c.TreatingDoc,
		c.RoomType, c.PolicyPeriod, c.AdmissionDate, c.DischargeDate,
	}
	parts = append(parts, c.Procedures...)
	parts = append(parts, c.Medications...)
	parts = append(parts, c.AssociatedFiles...)
	return strings.ToLower(strings.Join(parts, " "))
}

// ClaimRequest is the API request payload for claim adjudication.
type ClaimRequest struct {
	PolicyNumber string `json:"policy_number"`
	PatientName  string `json:"patient_name"`
	HospitalName string `json:"hospital_name,omitempty"`
	TreatingDoc  string `json:"treating_doctor,omitempty"`

	Diagnosis         string   `json:"diagnosis"`
	TreatmentDuration int      `json:"treatment_duration"`
	Procedures        []string `json:"procedures,omitempty"`
	Medications       []string `json:"medications,omitempty"`
	RoomType          string   `json:"room_type,omitempty"`

	TotalClaimAmount   float64 `json:"total_claim_amount"`
	BilledAmount       float64 `json:"billed_amount,omitempty"`
	RoomRent           float64 `json:"room_rent,omitempty"`
	DoctorFees         float64 `json:"doctor_fees,omitempty"`
	MedicineCosts      float64 `json:"medicine_costs,omitempty"`
	InvestigationCosts float64 `json:"investigation_costs,omitempty"`
	SurgeryCosts       float64 `json:"surgery_costs,omitempty"`

	PolicyPeriod  string   `json:"policy_period,omitempty"`
	AdmissionDate string   `json:"admission_date,omitempty"`
	DischargeDate string   `json:"discharge_date,omitempty"`
	RoomRentLimit float64  `json:"room_rent_limit,omitempty"`
	PlanTier      PlanTier `json:"plan_tier,omitempty"`

	AssociatedFiles []string `json:"associated_files,omitempty"`
}

// ToClaim converts a request to a ClaimRecord. The claim ID is assigned
// by the caller.
func (r *ClaimRequest) ToClaim(claimID, tenantID string) *ClaimRecord {
	return &ClaimRecord{
		ClaimID:            claimID,
		TenantID:           tenantID,
		PolicyNumber:       r.PolicyNumber,
		PatientName:        r.PatientName,
		HospitalName:       r.HospitalName,
		TreatingDoc:        r.TreatingDoc,
		Diagnosis:          r.Diagnosis,
		TreatmentDuration:  r.TreatmentDuration,
		Procedures:         r.Procedures,
		Medications:        r.Medications,
		RoomType:           r.RoomType,
		TotalClaimAmount:   r.TotalClaimAmount,
		BilledAmount:       r.BilledAmount,
		RoomRent:           r.RoomRent,
		DoctorFees:         r.DoctorFees,
		MedicineCosts:      r.MedicineCosts,
		InvestigationCosts: r.InvestigationCosts,
		SurgeryCosts:       r.SurgeryCosts,
		PolicyPeriod:       r.PolicyPeriod,
		AdmissionDate:      r.AdmissionDate,
		DischargeDate:      r.DischargeDate,
		RoomRentLimit:      r.RoomRentLimit,
		PlanTier:           r.PlanTier,
		AssociatedFiles:    r.AssociatedFiles,
		CreatedAt:          time.Now().UTC(),
	}
}
