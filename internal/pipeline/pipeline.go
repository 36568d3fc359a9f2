// Package pipeline runs a claim through the full adjudication sequence:
// medical validation, fraud analysis, coverage checks, configured rules,
// typologies, and the final decision.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openclaims/heron/internal/coverage"
	"github.com/openclaims/heron/internal/decision"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/fraud"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/medical"
	"github.com/openclaims/heron/internal/rules"
)

// EngineVersion is stamped into every adjudication's metadata.
const EngineVersion = "heron-1.0"

// alertFraudThreshold marks adjudications worth pushing to the alert topic
// even when they were not denied outright.
const alertFraudThreshold = 0.7

// Adjudicator orchestrates the analysis stages for a claim.
// Stages never fail the claim: a stage that cannot run contributes a
// neutral result and the final decision routes the claim to review.
type Adjudicator struct {
	medical  *medical.Validator
	fraud    *fraud.Detector
	coverage *coverage.Validator
	decision *decision.Engine

	engine         *rules.Engine
	typologyEngine *rules.TypologyEngine

	log *slog.Logger
}

// New creates an adjudicator over a shared knowledge base. The rule and
// typology engines are optional; without them only the built-in analyses
// run.
func New(kb *knowledge.Base, engine *rules.Engine, typologyEngine *rules.TypologyEngine, log *slog.Logger) *Adjudicator {
	if log == nil {
		log = slog.Default()
	}
	return &Adjudicator{
		medical:        medical.NewValidator(kb, log),
		fraud:          fraud.NewDetector(kb, log),
		coverage:       coverage.NewValidator(kb, log),
		decision:       decision.NewEngine(log),
		engine:         engine,
		typologyEngine: typologyEngine,
		log:            log.With("component", "pipeline"),
	}
}

// Input carries one claim through the pipeline.
type Input struct {
	TenantID string
	Claim    *domain.ClaimRecord
	TraceID  string

	// VelocityWindow in seconds for claim-frequency rules; 0 means 1 hour.
	VelocityWindow int

	// StartTime is when intake began, for total latency accounting.
	// Zero means "now".
	StartTime time.Time
}

// Adjudicate runs every stage and assembles the persisted result.
func (a *Adjudicator) Adjudicate(ctx context.Context, input *Input) *domain.Adjudication {
	start := input.StartTime
	if start.IsZero() {
		start = time.Now()
	}

	claim := input.Claim

	adj := &domain.Adjudication{
		ID:        uuid.New().String(),
		TenantID:  input.TenantID,
		ClaimID:   claim.ClaimID,
		Timestamp: time.Now().UTC(),
	}

	// 1. Medical appropriateness
	medStart := time.Now()
	adj.Medical = a.medical.Validate(claim)
	medicalMs := time.Since(medStart).Milliseconds()

	// 2. Fraud analysis, fed by the medical result
	fraudStart := time.Now()
	adj.Fraud = a.fraud.Analyze(claim, adj.Medical)
	fraudMs := time.Since(fraudStart).Milliseconds()

	// 3. Coverage checks
	adj.Coverage = a.coverage.Validate(claim)

	// 4. Configured rules; a failing rule can raise the effective fraud
	// score but never lower it.
	adj.FraudScore = adj.Fraud.OverallRiskScore
	var ruleResults []domain.RuleResult
	if a.engine != nil && a.engine.RulesCount() > 0 {
		ruleResults = a.evaluateRules(ctx, input)
		for _, r := range ruleResults {
			if r.SubRuleRef == domain.RuleOutcomeFail && r.Score > adj.FraudScore {
				adj.FraudScore = r.Score
			}
		}
	}

	// 5. Typologies over the rule results
	if a.typologyEngine != nil && a.typologyEngine.TypologyCount() > 0 && len(ruleResults) > 0 {
		adj.TypologyResults = a.typologyEngine.EvaluateTypologies(ruleResults)
	}
	adj.RuleResults = ruleResults

	// 6. Final decision
	decStart := time.Now()
	adj.Final = a.decision.Decide(claim, adj.FraudScore, adj.Medical.AppropriatenessScore, adj.Coverage)
	decisionMs := time.Since(decStart).Milliseconds()

	adj.Metadata = domain.AdjudicationMetadata{
		TraceID:        input.TraceID,
		MedicalMs:      medicalMs,
		FraudMs:        fraudMs,
		DecisionMs:     decisionMs,
		TotalMs:        time.Since(start).Milliseconds(),
		RulesEvaluated: len(ruleResults),
		EngineVersion:  EngineVersion,
	}

	a.log.Info("claim adjudicated",
		"claim_id", claim.ClaimID,
		"tenant_id", input.TenantID,
		"status", adj.Final.Status,
		"fraud_score", adj.FraudScore,
		"medical_score", adj.Medical.AppropriatenessScore,
		"duration_ms", adj.Metadata.TotalMs,
	)

	return adj
}

// evaluateRules runs the configured rules. Engine errors are logged and
// treated as "no rule signal" rather than failing the claim.
func (a *Adjudicator) evaluateRules(ctx context.Context, input *Input) []domain.RuleResult {
	window := input.VelocityWindow
	if window == 0 {
		window = 3600
	}

	results, err := a.engine.EvaluateAll(ctx, &rules.EvaluateInput{
		TenantID:       input.TenantID,
		Claim:          input.Claim,
		VelocityWindow: window,
	})
	if err != nil {
		a.log.Error("rule evaluation failed",
			"claim_id", input.Claim.ClaimID,
			"error", err,
		)
		return nil
	}
	return results
}

// AdjudicateBatch processes claims concurrently, capped at maxWorkers.
// Results are returned in input order.
func (a *Adjudicator) AdjudicateBatch(ctx context.Context, inputs []*Input, maxWorkers int) []*domain.Adjudication {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	results := make([]*domain.Adjudication, len(inputs))
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input *Input) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = a.Adjudicate(ctx, input)
		}(i, input)
	}

	wg.Wait()
	return results
}

// ShouldAlert reports whether an adjudication warrants an alert event:
// a denial, a high effective fraud score, or any triggered typology.
func ShouldAlert(adj *domain.Adjudication) bool {
	if adj.Final.Status == domain.StatusDenied {
		return true
	}
	if adj.FraudScore >= alertFraudThreshold {
		return true
	}
	for _, t := range adj.TypologyResults {
		if t.Triggered {
			return true
		}
	}
	return false
}

// Reasons flattens the decision's reason lists, denials first.
func Reasons(adj *domain.Adjudication) []string {
	var reasons []string
	reasons = append(reasons, adj.Final.DenialReasons...)
	reasons = append(reasons, adj.Final.ReviewReasons...)
	reasons = append(reasons, adj.Final.ApprovalReasons...)
	return reasons
}
