package domain

// Risk levels for the aggregate fraud score.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Pattern severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// FraudPattern is one detected fraud indicator.
type FraudPattern struct {
	Pattern     string `json:"pattern"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Evidence    string `json:"evidence,omitempty"`
}

// FraudAnalysis is the combined output of the fraud sub-analyses.
type FraudAnalysis struct {
	OverallRiskScore float64        `json:"overall_risk_score"`
	RiskLevel        string         `json:"risk_level"` // LOW / MEDIUM / HIGH
	DetectedPatterns []FraudPattern `json:"detected_patterns"`
	Recommendation   string         `json:"recommendation"` // APPROVE / REVIEW / REJECT

	Detailed DetailedAnalysis `json:"detailed_analysis"`

	Document   DocumentAnalysis   `json:"document_analysis"`
	Behavioral BehavioralAnalysis `json:"behavioral_analysis"`
	Financial  FinancialAnalysis  `json:"financial_analysis"`
	Medical    MedicalFraud       `json:"medical_fraud_analysis"`
	Insurance  InsuranceFraud     `json:"insurance_fraud_analysis"`
}

// DetailedAnalysis is the human-readable summary attached to a fraud
// analysis for reviewers.
type DetailedAnalysis struct {
	PrimaryReason    string   `json:"primary_reason"`
	RiskFactors      []string `json:"risk_factors"`
	SuggestedActions []string `json:"suggested_actions"`
}

// DocumentAnalysis reports cross-document consistency findings.
type DocumentAnalysis struct {
	Inconsistencies  []FraudPattern `json:"inconsistencies"`
	IsConsistent     bool           `json:"is_consistent"`
	ConsistencyScore float64        `json:"consistency_score"`
}

// BehavioralAnalysis reports behavioral fraud indicators.
type BehavioralAnalysis struct {
	Patterns       []FraudPattern `json:"behavioral_patterns"`
	RiskIndicators int            `json:"risk_indicators"`
}

// FinancialAnalysis reports billing-shape fraud indicators.
type FinancialAnalysis struct {
	Patterns       []FraudPattern `json:"financial_patterns"`
	RiskIndicators int            `json:"risk_indicators"`
}

// MedicalFraud reports disease-aware treatment fraud indicators.
type MedicalFraud struct {
	Patterns       []FraudPattern `json:"medical_fraud_patterns"`
	RiskIndicators int            `json:"risk_indicators"`
	Score          float64        `json:"medical_fraud_score"`
}

// InsuranceFraud reports policy-violation fraud indicators.
type InsuranceFraud struct {
	Patterns       []FraudPattern `json:"insurance_fraud_patterns"`
	RiskIndicators int            `json:"risk_indicators"`
	Score          float64        `json:"insurance_fraud_score"`
}
