package domain

// DiseaseProfile is the static reference record of expected treatment shape
// for one diagnosis. Loaded once at startup, never mutated.
type DiseaseProfile struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Category string `json:"category"`

	// Typical inpatient duration in days
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`

	// Expected total claim cost
	MinCost       float64 `json:"min_cost"`
	MaxCost       float64 `json:"max_cost"`
	MaxReasonable float64 `json:"max_reasonable"`

	RoomType        string `json:"room_type"` // general, private, icu, day_care
	ICURequired     bool   `json:"icu_required"`
	SurgeryRequired bool   `json:"surgery_required"`

	RequiredTreatments    []string `json:"required_treatments"`
	UnnecessaryTreatments []string `json:"unnecessary_treatments"`
	CommonMedications     []string `json:"common_medications"`
	RedFlags              []string `json:"red_flags"`
}

// PlanTier identifies a health plan tier.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic_health_plan"
	PlanPremium PlanTier = "premium_health_plan"
)

// CoverageRules holds plan-level limits and exclusions.
type CoverageRules struct {
	Plan          PlanTier `json:"plan"`
	RoomRentLimit float64  `json:"room_rent_limit"` // per day
	ICULimit      float64  `json:"icu_limit"`       // per day
	SurgeryLimit  float64  `json:"surgery_limit"`
	CoPay         float64  `json:"co_pay"` // policyholder-borne fraction

	DayCareProcedures []string `json:"day_care_procedures"`
	Exclusions        []string `json:"exclusions"`

	// Per-disease override for the maximum reimbursable amount,
	// keyed by disease key.
	DiseaseLimits map[string]float64 `json:"disease_specific_limits"`
}

// DiseaseLimit returns the plan's maximum reimbursable amount for a disease
// key, or 0 when the plan carries no override for it.
func (r *CoverageRules) DiseaseLimit(diseaseKey string) float64 {
	if r.DiseaseLimits == nil {
		return 0
	}
	return r.DiseaseLimits[diseaseKey]
}
