// Package coverage validates a claim against the policy's coverage rules:
// policy dates, room-rent and surgery limits, and procedure exclusions.
package coverage

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/openclaims/heron/internal/dates"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
)

var excludedProcedures = []string{"cosmetic_surgery", "dental_implants"}

// Validator checks claims against plan coverage rules.
type Validator struct {
	kb  *knowledge.Base
	log *slog.Logger
}

func NewValidator(kb *knowledge.Base, log *slog.Logger) *Validator {
	return &Validator{kb: kb, log: log.With("component", "coverage")}
}

// Validate runs the three coverage checks. Malformed dates skip the policy
// check rather than fail it; missing amounts skip the dependent limit check.
func (v *Validator) Validate(claim *domain.ClaimRecord) domain.CoverageResult {
	rules := v.kb.CoverageRules(claim.PlanTier)

	result := domain.CoverageResult{
		PolicyValidation: domain.PolicyValidation{Status: domain.PolicyValid},
		CoverageLimits: domain.CoverageLimits{
			RoomRentLimit:  rules.RoomRentLimit,
			ICULimit:       rules.ICULimit,
			SurgeryLimit:   rules.SurgeryLimit,
			ExceededLimits: []string{},
		},
		ExclusionsFound: []string{},
		CoPayApplicable: rules.CoPay,
	}

	v.checkPolicyDates(claim, &result)
	v.checkLimits(claim, &result)
	v.checkExclusions(claim, &result)

	v.log.Debug("coverage validation complete",
		"claim_id", claim.ClaimID,
		"policy_status", result.PolicyValidation.Status,
		"exceeded_limits", len(result.CoverageLimits.ExceededLimits),
		"exclusions", len(result.ExclusionsFound))
	return result
}

func (v *Validator) checkPolicyDates(claim *domain.ClaimRecord, result *domain.CoverageResult) {
	if claim.PolicyPeriod == "" || claim.AdmissionDate == "" {
		return
	}
	end, ok := dates.PolicyEnd(claim.PolicyPeriod)
	if !ok {
		v.log.Warn("unparseable policy period, skipping date check",
			"claim_id", claim.ClaimID, "policy_period", claim.PolicyPeriod)
		return
	}
	admission, ok := dates.Parse(claim.AdmissionDate)
	if !ok {
		v.log.Warn("unparseable admission date, skipping date check",
			"claim_id", claim.ClaimID, "admission_date", claim.AdmissionDate)
		return
	}
	if admission.After(end) {
		result.PolicyValidation.Status = domain.PolicyExpired
		result.PolicyValidation.Reasons = append(result.PolicyValidation.Reasons,
			fmt.Sprintf("Policy expired on %s, admission on %s",
				end.Format("2006-01-02"), claim.AdmissionDate))
	}
}

func (v *Validator) checkLimits(claim *domain.ClaimRecord, result *domain.CoverageResult) {
	// Duration floored to 1: a same-day admission still occupies a day.
	duration := claim.TreatmentDuration
	if duration < 1 {
		duration = 1
	}

	dailyLimit := claim.RoomRentLimit
	if dailyLimit == 0 {
		dailyLimit = result.CoverageLimits.RoomRentLimit
	}

	if claim.RoomRent > 0 && dailyLimit > 0 {
		dailyRate := claim.RoomRent / float64(duration)
		if dailyRate > dailyLimit {
			result.CoverageLimits.ExceededLimits = append(result.CoverageLimits.ExceededLimits,
				fmt.Sprintf("Daily room rent %.2f (%.0f / %d days) exceeds limit %.0f",
					dailyRate, claim.RoomRent, duration, dailyLimit))
		}
	}

	if claim.SurgeryCosts > result.CoverageLimits.SurgeryLimit {
		result.CoverageLimits.ExceededLimits = append(result.CoverageLimits.ExceededLimits,
			fmt.Sprintf("Surgery cost %.0f exceeds limit %.0f",
				claim.SurgeryCosts, result.CoverageLimits.SurgeryLimit))
	}
}

func (v *Validator) checkExclusions(claim *domain.ClaimRecord, result *domain.CoverageResult) {
	for _, proc := range claim.Procedures {
		if proc == "" {
			continue
		}
		lower := strings.ToLower(proc)
		for _, excluded := range excludedProcedures {
			if strings.Contains(lower, excluded) {
				result.ExclusionsFound = append(result.ExclusionsFound, proc)
				break
			}
		}
	}

	if strings.Contains(strings.ToLower(claim.Diagnosis), "cosmetic") {
		result.ExclusionsFound = append(result.ExclusionsFound, "Cosmetic procedures excluded")
	}
}
