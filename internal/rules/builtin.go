package rules

import "github.com/openclaims/heron/internal/domain"

func f(v float64) *float64 { return &v }

// BuiltinRules returns the starter rule set loaded on a fresh install when
// the database holds no tenant rules yet. Operators replace these via the
// rules API.
func BuiltinRules() []*domain.RuleConfig {
	failBands := []domain.RuleBand{
		{UpperLimit: f(0.5), SubRuleRef: domain.RuleOutcomePass, Reason: "within expected range"},
		{LowerLimit: f(0.5), SubRuleRef: domain.RuleOutcomeFail, Reason: "rule condition met"},
	}

	return []*domain.RuleConfig{
		{
			ID:          "claim-amount-extreme",
			Name:        "Extreme claim amount",
			Description: "Claim total beyond any catalog disease ceiling",
			Version:     "1.0",
			Expression:  "amount > 800000.0",
			Bands:       failBands,
			Weight:      0.6,
			Enabled:     true,
		},
		{
			ID:          "claim-velocity-burst",
			Name:        "Claim frequency burst",
			Description: "More than three claims on one policy in the window",
			Version:     "1.0",
			Expression:  "claim_velocity > 3",
			Bands:       failBands,
			Weight:      0.7,
			Enabled:     true,
		},
		{
			ID:          "room-rent-outlier",
			Name:        "Room rent outlier",
			Description: "Per-day room rent grossly above any plan limit",
			Version:     "1.0",
			Expression:  "duration_days > 0 && room_rent / double(duration_days) > 20000.0",
			Bands:       failBands,
			Weight:      0.5,
			Enabled:     true,
		},
	}
}

// BuiltinTypologies groups the starter rules into named fraud scenarios.
func BuiltinTypologies() []*domain.Typology {
	return []*domain.Typology{
		{
			ID:          "billing-inflation",
			Name:        "Billing inflation",
			Description: "Inflated totals combined with room rent abuse",
			Version:     "1.0",
			Rules: []domain.TypologyRuleWeight{
				{RuleID: "claim-amount-extreme", Weight: 0.6},
				{RuleID: "room-rent-outlier", Weight: 0.4},
			},
			AlertThreshold: 0.5,
			Enabled:        true,
		},
		{
			ID:          "policy-abuse",
			Name:        "Policy abuse",
			Description: "Rapid repeat claims against a single policy",
			Version:     "1.0",
			Rules: []domain.TypologyRuleWeight{
				{RuleID: "claim-velocity-burst", Weight: 1.0},
			},
			AlertThreshold: 0.7,
			Enabled:        true,
		},
	}
}
