package domain

import "time"

// Decision statuses.
const (
	StatusApproved    = "APPROVED"
	StatusDenied      = "DENIED"
	StatusUnderReview = "UNDER_REVIEW"
)

// Decision is the final business decision for a claim.
//
// Invariants: ApprovedAmount is non-zero only when Status is APPROVED, and
// PatientResponsibility + ApprovedAmount always reconciles to the total
// claimed amount to the cent.
type Decision struct {
	Status         string  `json:"status"` // APPROVED / DENIED / UNDER_REVIEW
	ApprovedAmount float64 `json:"approved_amount"`

	DenialReasons   []string `json:"denial_reasons"`
	ApprovalReasons []string `json:"approval_reasons"`
	ReviewReasons   []string `json:"review_reasons"`

	CoPayAmount           float64 `json:"co_pay_amount"`
	PatientResponsibility float64 `json:"patient_responsibility"`

	DecisionDate time.Time `json:"decision_date"`
}

// Adjudication is the complete persisted result for one claim: the final
// decision plus the three intermediate result objects, as consumed by the
// report-rendering and persistence collaborators.
type Adjudication struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	ClaimID  string `json:"claim_id"`

	Medical  ValidationResult `json:"medical_validation"`
	Fraud    FraudAnalysis    `json:"fraud_analysis"`
	Coverage CoverageResult   `json:"coverage_analysis"`
	Final    Decision         `json:"final_decision"`

	// FraudScore is the effective score the decision engine saw: the
	// detector's overall risk combined with any configured rule hits.
	FraudScore float64 `json:"fraud_score"`

	RuleResults     []RuleResult     `json:"rule_results,omitempty"`
	TypologyResults []TypologyResult `json:"typology_results,omitempty"`

	Timestamp time.Time            `json:"timestamp"`
	Metadata  AdjudicationMetadata `json:"metadata"`
}

// AdjudicationMetadata carries processing information.
type AdjudicationMetadata struct {
	TraceID        string `json:"trace_id,omitempty"`
	MedicalMs      int64  `json:"medical_ms"`
	FraudMs        int64  `json:"fraud_ms"`
	DecisionMs     int64  `json:"decision_ms"`
	TotalMs        int64  `json:"total_ms"`
	RulesEvaluated int    `json:"rules_evaluated"`
	EngineVersion  string `json:"engine_version"`
}

// AdjudicationResponse is the API response for a claim adjudication.
type AdjudicationResponse struct {
	AdjudicationID string               `json:"adjudication_id"`
	ClaimID        string               `json:"claim_id"`
	Status         string               `json:"status"`
	ApprovedAmount float64              `json:"approved_amount"`
	FraudScore     float64              `json:"fraud_score"`
	RiskLevel      string               `json:"risk_level"`
	MedicalScore   float64              `json:"medical_score"`
	Reasons        []string             `json:"reasons,omitempty"`
	Metadata       AdjudicationMetadata `json:"metadata"`
}

// ToResponse flattens an Adjudication into its API shape.
func (a *Adjudication) ToResponse() *AdjudicationResponse {
	reasons := make([]string, 0,
		len(a.Final.DenialReasons)+len(a.Final.ReviewReasons)+len(a.Final.ApprovalReasons))
	reasons = append(reasons, a.Final.DenialReasons...)
	reasons = append(reasons, a.Final.ReviewReasons...)
	reasons = append(reasons, a.Final.ApprovalReasons...)

	return &AdjudicationResponse{
		AdjudicationID: a.ID,
		ClaimID:        a.ClaimID,
		Status:         a.Final.Status,
		ApprovedAmount: a.Final.ApprovedAmount,
		FraudScore:     a.FraudScore,
		RiskLevel:      a.Fraud.RiskLevel,
		MedicalScore:   a.Medical.AppropriatenessScore,
		Reasons:        reasons,
		Metadata:       a.Metadata,
	}
}
