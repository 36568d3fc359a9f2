package domain

// Typology groups related claim rules into a named fraud scenario with a
// weighted score and an alert threshold, e.g. "billing inflation" from
// high-amount plus room-rent rules.
type Typology struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// Rules and their weights within this typology
	Rules []TypologyRuleWeight `json:"rules"`

	// AlertThreshold triggers an alert when the weighted score reaches it
	AlertThreshold float64 `json:"alert_threshold"`

	Enabled bool `json:"enabled"`
}

// TypologyRuleWeight assigns a weight to a rule within a typology.
type TypologyRuleWeight struct {
	RuleID string  `json:"rule_id"`
	Weight float64 `json:"weight"`
}

// TypologyResult is the outcome of evaluating one typology against a
// claim's rule results.
type TypologyResult struct {
	TypologyID    string             `json:"typology_id"`
	TypologyName  string             `json:"typology_name"`
	Score         float64            `json:"score"`
	Threshold     float64            `json:"threshold"`
	Triggered     bool               `json:"triggered"`
	Contributions []RuleContribution `json:"contributions"`
	ProcessMs     int64              `json:"process_ms"`
}

// RuleContribution records one rule's contribution to a typology score.
type RuleContribution struct {
	RuleID       string  `json:"rule_id"`
	RuleScore    float64 `json:"rule_score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}
