package domain

// RuleConfig defines a configurable claim validation rule.
// Rules are CEL expressions over claim fields, managed via the API and
// evaluated alongside the built-in analyses.
type RuleConfig struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenant_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression to evaluate
	Expression string `json:"expression"`

	// Outcome bands for score-to-outcome mapping
	Bands []RuleBand `json:"bands"`

	// Rule weight for aggregation
	Weight float64 `json:"weight"`

	Enabled bool `json:"enabled"`
}

// RuleBand maps a score range to an outcome.
type RuleBand struct {
	LowerLimit *float64 `json:"lower_limit,omitempty"`
	UpperLimit *float64 `json:"upper_limit,omitempty"`
	SubRuleRef string   `json:"sub_rule_ref"` // e.g., ".pass", ".fail", ".review"
	Reason     string   `json:"reason"`
}

// RuleResult is the output of a rule evaluation.
type RuleResult struct {
	RuleID     string  `json:"rule_id"`
	TenantID   string  `json:"tenant_id"`
	ClaimID    string  `json:"claim_id"`
	SubRuleRef string  `json:"sub_rule_ref"` // ".pass", ".fail", ".err"
	Score      float64 `json:"score"`
	Reason     string  `json:"reason"`
	Weight     float64 `json:"weight"`
	ProcessMs  int64   `json:"process_ms"`
}

// Predefined rule outcomes
const (
	RuleOutcomePass   = ".pass"
	RuleOutcomeFail   = ".fail"
	RuleOutcomeReview = ".review"
	RuleOutcomeError  = ".err"
)
