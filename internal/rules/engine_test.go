package rules

import (
	"context"
	"fmt"
	"testing"

	"github.com/openclaims/heron/internal/domain"
)

func testClaim() *domain.ClaimRecord {
	return &domain.ClaimRecord{
		ClaimID:           "claim-001",
		PolicyNumber:      "POL-001",
		Diagnosis:         "dengue fever",
		TreatmentDuration: 5,
		TotalClaimAmount:  40000,
		RoomRent:          10000,
		RoomType:          "general",
	}
}

func TestEngineCreation(t *testing.T) {
	engine, err := NewEngine(nil, 5)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.RulesCount() != 0 {
		t.Errorf("expected 0 rules, got %d", engine.RulesCount())
	}
}

func TestLoadRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.RuleConfig{
		ID:         "test-rule-001",
		Name:       "Test Rule",
		Expression: "amount > 100.0",
		Bands:      []domain.RuleBand{},
		Weight:     1.0,
		Enabled:    true,
	}

	err := engine.LoadRule(rule)
	if err != nil {
		t.Fatalf("failed to load rule: %v", err)
	}

	if engine.RulesCount() != 1 {
		t.Errorf("expected 1 rule, got %d", engine.RulesCount())
	}
}

func TestLoadInvalidRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.RuleConfig{
		ID:         "invalid-rule",
		Name:       "Invalid Rule",
		Expression: "this is not valid CEL !!!",
		Enabled:    true,
	}

	err := engine.LoadRule(rule)
	if err == nil {
		t.Error("expected error for invalid CEL expression")
	}
}

func TestEvaluateAmountRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	zero := 0.0
	one := 1.0

	rule := &domain.RuleConfig{
		ID:         "amount-check",
		Name:       "Amount Check",
		Expression: "amount > 100000.0 ? 1.0 : 0.0",
		Bands: []domain.RuleBand{
			{LowerLimit: &zero, UpperLimit: &one, SubRuleRef: domain.RuleOutcomePass, Reason: "Normal amount"},
			{LowerLimit: &one, UpperLimit: nil, SubRuleRef: domain.RuleOutcomeFail, Reason: "Extreme amount"},
		},
		Weight:  1.0,
		Enabled: true,
	}

	engine.LoadRule(rule)

	ctx := context.Background()

	input := &EvaluateInput{TenantID: "tenant-001", Claim: testClaim()}

	results, err := engine.EvaluateAll(ctx, input)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Score != 0.0 {
		t.Errorf("expected score 0.0 for normal amount, got %.2f", results[0].Score)
	}
	if results[0].SubRuleRef != domain.RuleOutcomePass {
		t.Errorf("expected PASS, got %s", results[0].SubRuleRef)
	}

	input.Claim.TotalClaimAmount = 500000.0
	results, _ = engine.EvaluateAll(ctx, input)

	if results[0].Score != 1.0 {
		t.Errorf("expected score 1.0 for extreme amount, got %.2f", results[0].Score)
	}
	if results[0].SubRuleRef != domain.RuleOutcomeFail {
		t.Errorf("expected FAIL, got %s", results[0].SubRuleRef)
	}
}

func TestEvaluateBooleanRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.RuleConfig{
		ID:         "icu-room-check",
		Name:       "ICU Room Check",
		Expression: "room_type == 'icu'",
		Bands:      []domain.RuleBand{},
		Weight:     1.0,
		Enabled:    true,
	}

	engine.LoadRule(rule)

	ctx := context.Background()

	input := &EvaluateInput{TenantID: "tenant-001", Claim: testClaim()}

	results, _ := engine.EvaluateAll(ctx, input)
	if results[0].Score != 0.0 {
		t.Errorf("expected score 0.0 for general room, got %.2f", results[0].Score)
	}

	input.Claim.RoomType = "icu"
	results, _ = engine.EvaluateAll(ctx, input)
	if results[0].Score != 1.0 {
		t.Errorf("expected score 1.0 for ICU room, got %.2f", results[0].Score)
	}
}

func TestClaimVelocityRule(t *testing.T) {
	// Mock velocity getter that returns a fixed claim count
	velocityGetter := func(ctx context.Context, tenantID, policyNumber string, windowSecs int) (int64, error) {
		return 6, nil // six claims on the policy in the window
	}

	engine, _ := NewEngine(velocityGetter, 5)
	defer engine.Close()

	zero := 0.0
	half := 0.5
	one := 1.0

	rule := &domain.RuleConfig{
		ID:          "velocity-check-001",
		Name:        "Claim Frequency Check",
		Description: "Flags policies with unusually many claims in the window",
		Version:     "1.0.0",
		Expression:  "claim_velocity > 5 ? 1.0 : (claim_velocity > 2 ? 0.5 : 0.0)",
		Bands: []domain.RuleBand{
			{LowerLimit: &zero, UpperLimit: &half, SubRuleRef: domain.RuleOutcomePass, Reason: "Normal frequency"},
			{LowerLimit: &half, UpperLimit: &one, SubRuleRef: domain.RuleOutcomeReview, Reason: "Elevated frequency"},
			{LowerLimit: &one, UpperLimit: nil, SubRuleRef: domain.RuleOutcomeFail, Reason: "Claim burst"},
		},
		Weight:  1.0,
		Enabled: true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()
	input := &EvaluateInput{
		TenantID:       "tenant-001",
		Claim:          testClaim(),
		VelocityWindow: 30 * 24 * 3600, // 30 days
	}

	results, _ := engine.EvaluateAll(ctx, input)

	if results[0].Score != 1.0 {
		t.Errorf("expected score 1.0 for claim burst, got %.2f", results[0].Score)
	}
	if results[0].SubRuleRef != domain.RuleOutcomeFail {
		t.Errorf("expected FAIL for claim burst, got %s", results[0].SubRuleRef)
	}
}

func TestParallelExecution(t *testing.T) {
	engine, _ := NewEngine(nil, 3)
	defer engine.Close()

	for i := 0; i < 10; i++ {
		rule := &domain.RuleConfig{
			ID:         fmt.Sprintf("rule-%d", i),
			Name:       fmt.Sprintf("Rule %d", i),
			Expression: "amount > 0.0",
			Weight:     1.0,
			Enabled:    true,
		}
		engine.LoadRule(rule)
	}

	if engine.RulesCount() != 10 {
		t.Fatalf("expected 10 rules, got %d", engine.RulesCount())
	}

	ctx := context.Background()
	input := &EvaluateInput{TenantID: "tenant-001", Claim: testClaim()}

	results, err := engine.EvaluateAll(ctx, input)
	if err != nil {
		t.Fatalf("parallel evaluation failed: %v", err)
	}

	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Score != 1.0 {
			t.Errorf("rule %d: expected score 1.0, got %.2f", i, r.Score)
		}
	}
}

func TestDurationRateRule(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	zero := 0.0
	one := 1.0

	rule := &domain.RuleConfig{
		ID:          "room-rate-001",
		Name:        "Daily Room Rate Check",
		Description: "Flags grossly inflated per-day room rent",
		Version:     "1.0.0",
		Expression:  "duration_days > 0 && room_rent / double(duration_days) > 20000.0 ? 1.0 : 0.0",
		Bands: []domain.RuleBand{
			{LowerLimit: &zero, UpperLimit: &one, SubRuleRef: domain.RuleOutcomePass, Reason: "Normal room rate"},
			{LowerLimit: &one, UpperLimit: nil, SubRuleRef: domain.RuleOutcomeReview, Reason: "Inflated room rate"},
		},
		Weight:  0.8,
		Enabled: true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()

	input := &EvaluateInput{TenantID: "t1", Claim: testClaim()}
	results, _ := engine.EvaluateAll(ctx, input)
	if results[0].SubRuleRef != domain.RuleOutcomePass {
		t.Errorf("expected PASS for normal rate, got %s", results[0].SubRuleRef)
	}

	input.Claim.RoomRent = 150000
	results, _ = engine.EvaluateAll(ctx, input)
	if results[0].SubRuleRef != domain.RuleOutcomeReview {
		t.Errorf("expected REVIEW for inflated rate, got %s", results[0].SubRuleRef)
	}
}

func TestBuiltinRulesCompile(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	if err := engine.LoadRules(BuiltinRules()); err != nil {
		t.Fatalf("builtin rules must compile: %v", err)
	}
	if engine.RulesCount() != len(BuiltinRules()) {
		t.Errorf("loaded %d of %d builtin rules", engine.RulesCount(), len(BuiltinRules()))
	}
}

// TestBuiltinStarterSet exercises the fresh-install path end to end: the
// builtin rules and typologies load together, every typology references a
// builtin rule, and an egregious claim trips the billing-inflation typology.
func TestBuiltinStarterSet(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	if err := engine.LoadRules(BuiltinRules()); err != nil {
		t.Fatalf("builtin rules must compile: %v", err)
	}

	typologyEngine := NewTypologyEngine()
	typologyEngine.LoadTypologies(BuiltinTypologies())

	if typologyEngine.TypologyCount() != len(BuiltinTypologies()) {
		t.Errorf("loaded %d of %d builtin typologies",
			typologyEngine.TypologyCount(), len(BuiltinTypologies()))
	}

	ruleIDs := make(map[string]bool)
	for _, r := range BuiltinRules() {
		ruleIDs[r.ID] = true
	}
	for _, ty := range BuiltinTypologies() {
		for _, rw := range ty.Rules {
			if !ruleIDs[rw.RuleID] {
				t.Errorf("typology %s references unknown rule %s", ty.ID, rw.RuleID)
			}
		}
	}

	claim := testClaim()
	claim.TotalClaimAmount = 900000
	claim.RoomRent = 150000

	results, err := engine.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-001",
		Claim:    claim,
	})
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	failing := make(map[string]bool)
	for _, r := range results {
		if r.SubRuleRef == domain.RuleOutcomeFail {
			failing[r.RuleID] = true
		}
	}
	if !failing["claim-amount-extreme"] {
		t.Error("expected claim-amount-extreme to fail for a 900000 claim")
	}
	if !failing["room-rent-outlier"] {
		t.Error("expected room-rent-outlier to fail for 30000 per day room rent")
	}

	triggered := typologyEngine.GetTriggeredTypologies(results)
	found := false
	for _, ty := range triggered {
		if ty.TypologyID == "billing-inflation" {
			found = true
			if ty.Score < ty.Threshold {
				t.Errorf("triggered typology below threshold: %.2f < %.2f", ty.Score, ty.Threshold)
			}
		}
		if ty.TypologyID == "policy-abuse" {
			t.Error("policy-abuse should not trigger without claim velocity")
		}
	}
	if !found {
		t.Error("expected billing-inflation typology to trigger")
	}
}

func TestRuleResultMetadata(t *testing.T) {
	engine, _ := NewEngine(nil, 5)
	defer engine.Close()

	rule := &domain.RuleConfig{
		ID:         "meta-test",
		Expression: "amount > 0.0",
		Weight:     0.75,
		Enabled:    true,
	}
	engine.LoadRule(rule)

	ctx := context.Background()
	claim := testClaim()
	claim.ClaimID = "claim-456"
	input := &EvaluateInput{TenantID: "tenant-123", Claim: claim}

	results, _ := engine.EvaluateAll(ctx, input)

	if results[0].RuleID != "meta-test" {
		t.Errorf("expected RuleID 'meta-test', got '%s'", results[0].RuleID)
	}
	if results[0].TenantID != "tenant-123" {
		t.Errorf("expected TenantID 'tenant-123', got '%s'", results[0].TenantID)
	}
	if results[0].ClaimID != "claim-456" {
		t.Errorf("expected ClaimID 'claim-456', got '%s'", results[0].ClaimID)
	}
	if results[0].Weight != 0.75 {
		t.Errorf("expected Weight 0.75, got %.2f", results[0].Weight)
	}
	if results[0].ProcessMs < 0 {
		t.Error("ProcessMs should be non-negative")
	}
}
