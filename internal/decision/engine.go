// Package decision turns the intermediate analysis results into a final
// business decision via a fixed-priority rule cascade: denial beats review,
// review beats approval.
package decision

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/openclaims/heron/internal/domain"
)

// Cascade thresholds.
const (
	fraudDenyThreshold    = 0.8
	fraudApproveThreshold = 0.4
	fraudReviewCeiling    = 0.7
	medicalDenyThreshold  = 0.3
	medicalClearThreshold = 0.7
)

// Engine computes final decisions. It is stateless and safe for concurrent
// use.
type Engine struct {
	log *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	return &Engine{log: log.With("component", "decision")}
}

// Decide applies the rule cascade. fraudScore is the effective score after
// any configured rule hits are folded in; medicalScore comes straight from
// the medical validator.
func (e *Engine) Decide(claim *domain.ClaimRecord, fraudScore, medicalScore float64, coverage domain.CoverageResult) domain.Decision {
	var denial, approval, review []string

	policyStatus := coverage.PolicyValidation.Status
	if policyStatus == "" {
		policyStatus = domain.PolicyValid
	}

	// Denial triggers: any one is absolute.
	if policyStatus == domain.PolicyExpired {
		denial = append(denial, "Policy expired before treatment date")
	}
	if len(coverage.ExclusionsFound) > 0 {
		denial = append(denial, fmt.Sprintf("Excluded procedures: %s", strings.Join(coverage.ExclusionsFound, ", ")))
	}
	if fraudScore > fraudDenyThreshold {
		denial = append(denial, "High fraud risk detected")
	}
	if medicalScore < medicalDenyThreshold {
		denial = append(denial, "Medically inappropriate treatment")
	}

	limitsExceeded := len(coverage.CoverageLimits.ExceededLimits) > 0

	if len(denial) == 0 &&
		fraudScore < fraudApproveThreshold &&
		medicalScore > medicalClearThreshold &&
		!limitsExceeded &&
		policyStatus == domain.PolicyValid {
		approval = append(approval, "Low risk, medically appropriate, within coverage limits")
	}

	// Review triggers are evaluated independently; any one of them gates
	// approval even when the approval reason above fired.
	if fraudScore > fraudApproveThreshold && fraudScore <= fraudReviewCeiling {
		review = append(review, "Moderate fraud risk requires manual review")
	}
	if limitsExceeded {
		review = append(review, "Coverage limits exceeded - requires adjustment")
	}
	if medicalScore <= medicalClearThreshold {
		review = append(review, "Medical appropriateness concerns require review")
	}
	if strings.TrimSpace(claim.Diagnosis) == "" {
		review = append(review, "Missing or unclear diagnosis")
	}

	total := claim.TotalClaimAmount
	coPay := coverage.CoPayApplicable

	var status string
	var approved float64
	switch {
	case len(denial) > 0:
		status = domain.StatusDenied
	case len(review) == 0 && len(approval) > 0:
		status = domain.StatusApproved
		approved = total * (1 - coPay)
	default:
		status = domain.StatusUnderReview
	}

	d := domain.Decision{
		Status:                status,
		ApprovedAmount:        round2(approved),
		DenialReasons:         denial,
		ApprovalReasons:       approval,
		ReviewReasons:         review,
		CoPayAmount:           round2(total * coPay),
		PatientResponsibility: round2(total - round2(approved)),
		DecisionDate:          time.Now().UTC(),
	}

	e.log.Debug("decision computed",
		"claim_id", claim.ClaimID,
		"status", d.Status,
		"fraud_score", fraudScore,
		"medical_score", medicalScore,
		"approved_amount", d.ApprovedAmount)
	return d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
