// Package medical scores how well a claim's treatment matches the disease
// profile for its diagnosis. The score starts at 1.0 and fixed penalties are
// subtracted for each mismatch, clamped to [0,1].
package medical

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
)

// Penalty values per mismatch class.
const (
	penaltyShortStay      = 0.1
	penaltyExtendedStay   = 0.3
	penaltyExcessiveCost  = 0.4
	penaltyUnnecessary    = 0.2
	penaltyMissingReq     = 0.1
	penaltyUncommonMed    = 0.05
	penaltyMissingICU     = 0.3
	penaltyLuxuryRoom     = 0.1
	extendedStayFactor    = 1.3
	fraudStayFactor       = 1.5
	roomRentAbuseFactor   = 1.5
	appropriateThreshold  = 0.7
	approveThreshold      = 0.8
	reviewThreshold       = 0.6
	unknownDiagnosisScore = 0.5
)

// Validator checks claims against the disease knowledge base.
type Validator struct {
	kb  *knowledge.Base
	log *slog.Logger
}

func NewValidator(kb *knowledge.Base, log *slog.Logger) *Validator {
	return &Validator{kb: kb, log: log.With("component", "medical")}
}

// Validate scores one claim. It never returns an error: unresolvable
// diagnoses produce a neutral REVIEW result instead.
func (v *Validator) Validate(claim *domain.ClaimRecord) domain.ValidationResult {
	profile, ok := v.kb.Lookup(claim.Diagnosis)
	if !ok {
		v.log.Debug("diagnosis not in catalog", "claim_id", claim.ClaimID, "diagnosis", claim.Diagnosis)
		return unknownDiagnosis()
	}

	result := domain.ValidationResult{
		DiseaseIdentified:    profile.Name,
		AppropriatenessScore: 1.0,
		MedicalWarnings:      []string{},
		MedicalErrors:        []string{},
		FraudIndicators:      []domain.FraudPattern{},
	}

	v.checkDuration(claim, profile, &result)
	v.checkCosts(claim, profile, &result)
	v.checkTreatments(claim, profile, &result)
	v.checkRoomType(claim, profile, &result)
	v.checkRedFlagPatterns(claim, profile, &result)
	finalize(&result)

	v.log.Debug("medical validation complete",
		"claim_id", claim.ClaimID,
		"disease", profile.Key,
		"score", result.AppropriatenessScore,
		"recommendation", result.Recommendation)
	return result
}

func unknownDiagnosis() domain.ValidationResult {
	return domain.ValidationResult{
		DiseaseIdentified:      "Unknown",
		AppropriatenessScore:   unknownDiagnosisScore,
		MedicalWarnings:        []string{"Unknown diagnosis - limited validation possible"},
		MedicalErrors:          []string{},
		FraudIndicators:        []domain.FraudPattern{},
		IsMedicallyAppropriate: true,
		Recommendation:         domain.RecommendReview,
	}
}

func (v *Validator) checkDuration(claim *domain.ClaimRecord, p domain.DiseaseProfile, r *domain.ValidationResult) {
	days := claim.TreatmentDuration
	if p.MinDays > 0 && days < p.MinDays {
		r.MedicalWarnings = append(r.MedicalWarnings,
			fmt.Sprintf("Short stay (%d days) for %s (typical: %d-%d days)", days, p.Name, p.MinDays, p.MaxDays))
		r.AppropriatenessScore -= penaltyShortStay
	}
	if p.MaxDays > 0 && float64(days) > float64(p.MaxDays)*extendedStayFactor {
		r.MedicalErrors = append(r.MedicalErrors,
			fmt.Sprintf("Extended stay (%d days) for %s (typical: %d-%d days)", days, p.Name, p.MinDays, p.MaxDays))
		r.AppropriatenessScore -= penaltyExtendedStay
	}
}

func (v *Validator) checkCosts(claim *domain.ClaimRecord, p domain.DiseaseProfile, r *domain.ValidationResult) {
	amount := claim.TotalClaimAmount
	r.CostAnalysis = domain.CostAnalysis{
		ClaimedAmount:    amount,
		TypicalRange:     fmt.Sprintf("%s - %s", inr(p.MinCost), inr(p.MaxCost)),
		MaxReasonable:    inr(p.MaxReasonable),
		WithinGuidelines: amount >= p.MinCost && amount <= p.MaxReasonable,
	}

	// Below-range amounts are flagged but carry no penalty.
	if amount < p.MinCost {
		r.MedicalWarnings = append(r.MedicalWarnings,
			fmt.Sprintf("Low claim amount (%s) for %s", inr(amount), p.Name))
	}
	if p.MaxReasonable > 0 && amount > p.MaxReasonable {
		r.MedicalErrors = append(r.MedicalErrors,
			fmt.Sprintf("Excessive claim amount (%s) for %s", inr(amount), p.Name))
		r.AppropriatenessScore -= penaltyExcessiveCost
	}
}

func (v *Validator) checkTreatments(claim *domain.ClaimRecord, p domain.DiseaseProfile, r *domain.ValidationResult) {
	for _, treatment := range p.UnnecessaryTreatments {
		if knowledge.ContainsTerm(claim.Procedures, treatment) {
			r.MedicalErrors = append(r.MedicalErrors,
				fmt.Sprintf("Unnecessary treatment: %s for %s", treatment, p.Name))
			r.AppropriatenessScore -= penaltyUnnecessary
		}
	}

	for _, required := range p.RequiredTreatments {
		// Document extraction sometimes files tests or drugs under the
		// wrong heading, so medications count as a fallback location.
		if !knowledge.ContainsTerm(claim.Procedures, required) && !knowledge.ContainsTerm(claim.Medications, required) {
			r.MedicalWarnings = append(r.MedicalWarnings,
				fmt.Sprintf("Missing required treatment: %s for %s", required, p.Name))
			r.AppropriatenessScore -= penaltyMissingReq
		}
	}

	if len(p.CommonMedications) > 0 {
		for _, med := range claim.Medications {
			if knowledge.ContainsTerm(p.CommonMedications, med) {
				continue
			}
			if isNeutralLineItem(med) {
				continue
			}
			r.MedicalWarnings = append(r.MedicalWarnings,
				fmt.Sprintf("Uncommon medication: %s for %s", med, p.Name))
			r.AppropriatenessScore -= penaltyUncommonMed
		}
	}

	r.TreatmentAnalysis = domain.TreatmentAnalysis{
		TreatmentsFound:       claim.Procedures,
		RequiredTreatments:    p.RequiredTreatments,
		UnnecessaryTreatments: p.UnnecessaryTreatments,
		MedicationsFound:      claim.Medications,
		CommonMedications:     p.CommonMedications,
	}
}

// isNeutralLineItem reports generic billing lines that are not real drug
// names and should not count as uncommon medications.
func isNeutralLineItem(med string) bool {
	lower := strings.ToLower(med)
	for _, generic := range []string{"pharmacy", "consumables", "medical"} {
		if strings.Contains(lower, generic) {
			return true
		}
	}
	return false
}

func (v *Validator) checkRoomType(claim *domain.ClaimRecord, p domain.DiseaseProfile, r *domain.ValidationResult) {
	roomType := strings.ToLower(claim.RoomType)

	if p.ICURequired && !strings.Contains(roomType, "icu") {
		r.MedicalErrors = append(r.MedicalErrors,
			fmt.Sprintf("ICU admission required for %s but %s room used", p.Name, roomType))
		r.AppropriatenessScore -= penaltyMissingICU
	}

	if p.RoomType == "general" {
		switch roomType {
		case "deluxe", "executive", "suite":
			r.MedicalWarnings = append(r.MedicalWarnings,
				fmt.Sprintf("Luxury room (%s) used for routine %s treatment", roomType, p.Name))
			r.AppropriatenessScore -= penaltyLuxuryRoom
		}
	}
}

// checkRedFlagPatterns emits fraud indicators; these do not touch the
// appropriateness score.
func (v *Validator) checkRedFlagPatterns(claim *domain.ClaimRecord, p domain.DiseaseProfile, r *domain.ValidationResult) {
	roomLimit := claim.RoomRentLimit
	if roomLimit == 0 {
		roomLimit = 5000
	}
	if roomLimit > 0 && claim.RoomRent > roomLimit*roomRentAbuseFactor {
		r.FraudIndicators = append(r.FraudIndicators, domain.FraudPattern{
			Pattern:     "room_rent_abuse",
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("Room rent %s exceeds policy limit %s", inr(claim.RoomRent), inr(roomLimit)),
			Evidence:    "Possible billing manipulation",
		})
	}

	// Exact-name match here, unlike the fuzzy treatment checks: only a
	// literally billed unnecessary procedure counts as a fraud signal.
	for _, treatment := range claim.Procedures {
		if containsExact(p.UnnecessaryTreatments, treatment) {
			r.FraudIndicators = append(r.FraudIndicators, domain.FraudPattern{
				Pattern:     "unnecessary_procedures",
				Severity:    domain.SeverityHigh,
				Description: fmt.Sprintf("Unnecessary %s for %s", treatment, p.Name),
				Evidence:    "Medically inappropriate billing",
			})
		}
	}

	if p.MaxDays > 0 && float64(claim.TreatmentDuration) > float64(p.MaxDays)*fraudStayFactor {
		r.FraudIndicators = append(r.FraudIndicators, domain.FraudPattern{
			Pattern:     "extended_stay",
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("Extended stay (%d days) for %s", claim.TreatmentDuration, p.Name),
			Evidence:    fmt.Sprintf("Typical stay: %d days", p.MaxDays),
		})
	}
}

func containsExact(list []string, item string) bool {
	for _, l := range list {
		if strings.EqualFold(l, item) {
			return true
		}
	}
	return false
}

func finalize(r *domain.ValidationResult) {
	if r.AppropriatenessScore < 0 {
		r.AppropriatenessScore = 0
	}
	switch {
	case r.AppropriatenessScore >= approveThreshold:
		r.Recommendation = domain.RecommendApprove
	case r.AppropriatenessScore >= reviewThreshold:
		r.Recommendation = domain.RecommendReview
	default:
		r.Recommendation = domain.RecommendReject
	}
	r.IsMedicallyAppropriate = r.AppropriatenessScore >= appropriateThreshold
}

// inr renders an amount with thousands separators, matching report output.
func inr(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "₹" + b.String()
	if neg {
		out = "-₹" + b.String()
	}
	return out
}
