package domain

// Recommendation values shared by the medical validator and fraud detector.
const (
	RecommendApprove = "APPROVE"
	RecommendReview  = "REVIEW"
	RecommendReject  = "REJECT"
)

// ValidationResult is the output of the medical appropriateness validator.
type ValidationResult struct {
	DiseaseIdentified string `json:"disease_identified"`

	// AppropriatenessScore starts at 1.0 and is only ever decreased by
	// penalty rules, clamped to [0,1].
	AppropriatenessScore float64 `json:"appropriateness_score"`

	MedicalWarnings []string `json:"medical_warnings"`
	MedicalErrors   []string `json:"medical_errors"`

	// FraudIndicators are disease-aware patterns spotted during medical
	// validation; the fraud detector folds these into its own analysis.
	FraudIndicators []FraudPattern `json:"fraud_indicators"`

	// IsMedicallyAppropriate is score >= 0.7; this threshold is
	// deliberately distinct from the recommendation bands.
	IsMedicallyAppropriate bool   `json:"is_medically_appropriate"`
	Recommendation         string `json:"recommendation"` // APPROVE / REVIEW / REJECT

	CostAnalysis      CostAnalysis      `json:"cost_analysis"`
	TreatmentAnalysis TreatmentAnalysis `json:"treatment_analysis"`
}

// CostAnalysis summarizes the claimed amount against disease guidelines.
type CostAnalysis struct {
	ClaimedAmount    float64 `json:"claimed_amount"`
	TypicalRange     string  `json:"typical_range"`
	MaxReasonable    string  `json:"max_reasonable"`
	WithinGuidelines bool    `json:"within_guidelines"`
}

// TreatmentAnalysis records what was billed against what the disease
// guidelines expect.
type TreatmentAnalysis struct {
	TreatmentsFound       []string `json:"treatments_found"`
	RequiredTreatments    []string `json:"required_treatments"`
	UnnecessaryTreatments []string `json:"unnecessary_treatments"`
	MedicationsFound      []string `json:"medications_found"`
	CommonMedications     []string `json:"common_medications"`
}
