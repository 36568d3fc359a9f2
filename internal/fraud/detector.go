// Package fraud runs five independent pattern analyses over a claim and
// blends them into one [0,1] risk score. Sub-analyses never short-circuit
// each other: each produces its own findings from whatever fields parse.
package fraud

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/openclaims/heron/internal/dates"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
)

// Risk score weights and thresholds.
const (
	weightMedical     = 0.3
	weightConsistency = 0.25
	weightBehavioral  = 0.2
	weightFinancial   = 0.25

	weightBaseRisk       = 0.6
	weightMedicalFraud   = 0.3
	weightInsuranceFraud = 0.1

	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.45

	medicalPatternWeight   = 0.3
	insurancePatternWeight = 0.4
	indicatorWeight        = 0.3
	consistencyPenalty     = 0.3

	amountTolerance      = 1000
	roundAmountFloor     = 50000
	excessiveRoomRent    = 50000
	roomRentAbuseFactor  = 1.5
	extendedStayFactor   = 1.5
	defaultRoomRentLimit = 5000

	// MEDIUM risk is downgraded to LOW when the medical validator raised
	// at most this many warnings.
	minorWarningTolerance = 2
)

var accidentKeywords = []string{"accident", "fracture", "rta", "tibia", "injury"}

var accidentDocuments = []string{"fir", "mlc", "police", "report"}

var exclusionKeywords = []string{
	"under influence of alcohol",
	"alcohol detected",
	"breathalyzer: positive",
	"intoxicated",
	"smell of alcohol",
	"cosmetic surgery",
	"aesthetic purpose",
	"beautification",
	"rhinoplasty",
	"plastic surgery",
	"improvement of appearance",
}

// Detector analyzes claims for fraud patterns.
type Detector struct {
	kb  *knowledge.Base
	log *slog.Logger
}

func NewDetector(kb *knowledge.Base, log *slog.Logger) *Detector {
	return &Detector{kb: kb, log: log.With("component", "fraud")}
}

// Analyze runs all sub-analyses and combines them. The medical validation
// result feeds both the base risk blend and the MEDIUM-downgrade tolerance.
func (d *Detector) Analyze(claim *domain.ClaimRecord, medical domain.ValidationResult) domain.FraudAnalysis {
	analysis := domain.FraudAnalysis{
		Document:   d.analyzeDocuments(claim),
		Behavioral: d.analyzeBehavior(claim),
		Financial:  d.analyzeFinancials(claim),
		Medical:    d.analyzeMedicalFraud(claim),
		Insurance:  d.analyzeInsuranceFraud(claim),
	}

	d.combine(claim, medical, &analysis)

	d.log.Debug("fraud analysis complete",
		"claim_id", claim.ClaimID,
		"risk_score", analysis.OverallRiskScore,
		"risk_level", analysis.RiskLevel,
		"patterns", len(analysis.DetectedPatterns))
	return analysis
}

func (d *Detector) analyzeDocuments(claim *domain.ClaimRecord) domain.DocumentAnalysis {
	var inconsistencies []domain.FraudPattern

	if claim.BilledAmount > 0 && claim.TotalClaimAmount > 0 &&
		math.Abs(claim.BilledAmount-claim.TotalClaimAmount) > amountTolerance {
		inconsistencies = append(inconsistencies, domain.FraudPattern{
			Pattern:  "amount_inconsistency",
			Severity: domain.SeverityHigh,
			Description: fmt.Sprintf("Bill amount (%.0f) differs from claimed amount (%.0f)",
				claim.BilledAmount, claim.TotalClaimAmount),
		})
	}

	if admission, ok := dates.Parse(claim.AdmissionDate); ok {
		if discharge, ok := dates.Parse(claim.DischargeDate); ok && discharge.Before(admission) {
			inconsistencies = append(inconsistencies, domain.FraudPattern{
				Pattern:     "date_inconsistency",
				Severity:    domain.SeverityHigh,
				Description: "Discharge date precedes admission date across documents",
			})
		}
	}

	if isAccidentCase(claim.Diagnosis) && !hasAccidentDocument(claim.AssociatedFiles) {
		inconsistencies = append(inconsistencies, domain.FraudPattern{
			Pattern:     "missing_document",
			Severity:    domain.SeverityHigh,
			Description: "Accident claim missing mandatory MLC/FIR document",
		})
	}

	return domain.DocumentAnalysis{
		Inconsistencies:  inconsistencies,
		IsConsistent:     len(inconsistencies) == 0,
		ConsistencyScore: math.Max(0, 1.0-float64(len(inconsistencies))*consistencyPenalty),
	}
}

func isAccidentCase(diagnosis string) bool {
	lower := strings.ToLower(diagnosis)
	for _, kw := range accidentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func hasAccidentDocument(files []string) bool {
	joined := strings.ToLower(strings.Join(files, " "))
	for _, doc := range accidentDocuments {
		if strings.Contains(joined, doc) {
			return true
		}
	}
	return false
}

func (d *Detector) analyzeBehavior(claim *domain.ClaimRecord) domain.BehavioralAnalysis {
	var patterns []domain.FraudPattern

	if admission, ok := dates.Parse(claim.AdmissionDate); ok {
		switch admission.Weekday() {
		case time.Saturday, time.Sunday:
			patterns = append(patterns, domain.FraudPattern{
				Pattern:     "weekend_admission",
				Severity:    domain.SeverityLow,
				Description: "Admission on weekend - possible elective procedure",
				Evidence:    fmt.Sprintf("Admitted on %s", admission.Weekday()),
			})
		}
	}

	return domain.BehavioralAnalysis{Patterns: patterns, RiskIndicators: len(patterns)}
}

func (d *Detector) analyzeFinancials(claim *domain.ClaimRecord) domain.FinancialAnalysis {
	var patterns []domain.FraudPattern

	amount := claim.TotalClaimAmount
	if amount > roundAmountFloor && math.Mod(amount, 10000) == 0 {
		patterns = append(patterns, domain.FraudPattern{
			Pattern:     "round_number_amount",
			Severity:    domain.SeverityLow,
			Description: fmt.Sprintf("Round number claim amount: %.0f", amount),
			Evidence:    "Suspicious round number billing",
		})
	}

	if claim.RoomRent > excessiveRoomRent {
		patterns = append(patterns, domain.FraudPattern{
			Pattern:     "excessive_room_rent",
			Severity:    domain.SeverityMedium,
			Description: fmt.Sprintf("Excessive room rent: %.0f", claim.RoomRent),
			Evidence:    "Possible room rent inflation",
		})
	}

	return domain.FinancialAnalysis{Patterns: patterns, RiskIndicators: len(patterns)}
}

func (d *Detector) analyzeMedicalFraud(claim *domain.ClaimRecord) domain.MedicalFraud {
	var patterns []domain.FraudPattern

	profile, ok := d.kb.Lookup(claim.Diagnosis)
	if ok {
		// Literal billed-name match: only an explicitly billed
		// unnecessary procedure is a fraud signal, unlike the fuzzy
		// appropriateness check.
		for _, procedure := range claim.Procedures {
			if containsFold(profile.UnnecessaryTreatments, procedure) {
				patterns = append(patterns, domain.FraudPattern{
					Pattern:     "unnecessary_procedure",
					Severity:    domain.SeverityHigh,
					Description: fmt.Sprintf("Unnecessary %s for %s", procedure, profile.Name),
					Evidence:    fmt.Sprintf("%s guidelines prohibit this procedure", profile.Name),
				})
			}
		}

		if profile.MaxDays > 0 && float64(claim.TreatmentDuration) > float64(profile.MaxDays)*extendedStayFactor {
			patterns = append(patterns, domain.FraudPattern{
				Pattern:     "extended_stay_fraud",
				Severity:    domain.SeverityMedium,
				Description: fmt.Sprintf("Extended stay (%d days) for %s", claim.TreatmentDuration, profile.Name),
				Evidence:    fmt.Sprintf("Typical stay: %d days", profile.MaxDays),
			})
		}

		roomType := strings.ToLower(claim.RoomType)
		if profile.RoomType == "general" {
			switch roomType {
			case "deluxe", "executive", "suite":
				patterns = append(patterns, domain.FraudPattern{
					Pattern:     "luxury_room_abuse",
					Severity:    domain.SeverityMedium,
					Description: fmt.Sprintf("Luxury room (%s) for routine %s", roomType, profile.Name),
					Evidence:    fmt.Sprintf("%s typically requires %s room", profile.Name, profile.RoomType),
				})
			}
		}

		if !profile.ICURequired && strings.Contains(roomType, "icu") {
			patterns = append(patterns, domain.FraudPattern{
				Pattern:     "unnecessary_icu",
				Severity:    domain.SeverityHigh,
				Description: fmt.Sprintf("ICU admission for %s", profile.Name),
				Evidence:    fmt.Sprintf("%s does not typically require ICU", profile.Name),
			})
		}
	}

	return domain.MedicalFraud{
		Patterns:       patterns,
		RiskIndicators: len(patterns),
		Score:          math.Min(1.0, float64(len(patterns))*medicalPatternWeight),
	}
}

func containsFold(list []string, item string) bool {
	for _, l := range list {
		if strings.EqualFold(l, item) {
			return true
		}
	}
	return false
}

func (d *Detector) analyzeInsuranceFraud(claim *domain.ClaimRecord) domain.InsuranceFraud {
	var patterns []domain.FraudPattern

	if end, ok := dates.PolicyEnd(claim.PolicyPeriod); ok {
		if admission, ok := dates.Parse(claim.AdmissionDate); ok && admission.After(end) {
			patterns = append(patterns, domain.FraudPattern{
				Pattern:     "policy_expiry_fraud",
				Severity:    domain.SeverityHigh,
				Description: "Treatment after policy expiration",
				Evidence: fmt.Sprintf("Policy ended %s, admission %s",
					end.Format("2006-01-02"), claim.AdmissionDate),
			})
		}
	}

	roomLimit := claim.RoomRentLimit
	if roomLimit == 0 {
		roomLimit = defaultRoomRentLimit
	}
	if claim.RoomRent > roomLimit*roomRentAbuseFactor {
		patterns = append(patterns, domain.FraudPattern{
			Pattern:     "room_rent_abuse",
			Severity:    domain.SeverityMedium,
			Description: "Room rent significantly exceeds policy limit",
			Evidence:    fmt.Sprintf("Room rent %.0f vs limit %.0f", claim.RoomRent, roomLimit),
		})
	}

	allText := claim.AllText()
	for _, keyword := range exclusionKeywords {
		if strings.Contains(allText, keyword) {
			patterns = append(patterns, domain.FraudPattern{
				Pattern:     "policy_exclusion",
				Severity:    domain.SeverityHigh,
				Description: "Evidence of a policy-excluded condition detected",
				Evidence:    fmt.Sprintf("Found keyword: %q in documents", keyword),
			})
			break
		}
	}

	return domain.InsuranceFraud{
		Patterns:       patterns,
		RiskIndicators: len(patterns),
		Score:          math.Min(1.0, float64(len(patterns))*insurancePatternWeight),
	}
}

func (d *Detector) combine(claim *domain.ClaimRecord, medical domain.ValidationResult, analysis *domain.FraudAnalysis) {
	behavioralRisk := math.Min(1.0, float64(analysis.Behavioral.RiskIndicators)*indicatorWeight)
	financialRisk := math.Min(1.0, float64(analysis.Financial.RiskIndicators)*indicatorWeight)

	baseRisk := (1-medical.AppropriatenessScore)*weightMedical +
		(1-analysis.Document.ConsistencyScore)*weightConsistency +
		behavioralRisk*weightBehavioral +
		financialRisk*weightFinancial

	score := baseRisk*weightBaseRisk +
		analysis.Medical.Score*weightMedicalFraud +
		analysis.Insurance.Score*weightInsuranceFraud
	analysis.OverallRiskScore = score

	switch {
	case score >= highRiskThreshold:
		analysis.RiskLevel, analysis.Recommendation = domain.RiskHigh, domain.RecommendReject
	case score >= mediumRiskThreshold:
		analysis.RiskLevel, analysis.Recommendation = domain.RiskMedium, domain.RecommendReview
	default:
		analysis.RiskLevel, analysis.Recommendation = domain.RiskLow, domain.RecommendApprove
	}

	// Tolerance rule: a MEDIUM driven only by minor medical warnings is
	// not worth an analyst's time.
	if analysis.RiskLevel == domain.RiskMedium && len(medical.MedicalWarnings) <= minorWarningTolerance {
		analysis.RiskLevel, analysis.Recommendation = domain.RiskLow, domain.RecommendApprove
	}

	analysis.DetectedPatterns = collectPatterns(analysis)
	analysis.Detailed = detail(analysis, medical)
}

func collectPatterns(a *domain.FraudAnalysis) []domain.FraudPattern {
	var all []domain.FraudPattern
	all = append(all, a.Document.Inconsistencies...)
	all = append(all, a.Behavioral.Patterns...)
	all = append(all, a.Financial.Patterns...)
	all = append(all, a.Medical.Patterns...)
	all = append(all, a.Insurance.Patterns...)
	return all
}

func detail(a *domain.FraudAnalysis, medical domain.ValidationResult) domain.DetailedAnalysis {
	var reason string
	switch {
	case a.OverallRiskScore >= highRiskThreshold:
		reason = "HIGH RISK: Multiple medical and insurance fraud patterns detected"
	case a.OverallRiskScore >= mediumRiskThreshold:
		reason = "MEDIUM RISK: Suspicious medical treatment patterns requiring review"
	default:
		reason = "LOW RISK: Minimal fraud indicators detected"
	}

	var factors []string
	if n := len(a.Medical.Patterns); n > 0 {
		factors = append(factors, fmt.Sprintf("Medical fraud patterns: %d detected", n))
	}
	if n := len(a.Insurance.Patterns); n > 0 {
		factors = append(factors, fmt.Sprintf("Insurance violations: %d detected", n))
	}
	if medical.AppropriatenessScore < 0.7 {
		factors = append(factors, fmt.Sprintf("Medical appropriateness: %.0f%%", medical.AppropriatenessScore*100))
	}
	if a.Document.ConsistencyScore < 0.8 {
		factors = append(factors, fmt.Sprintf("Document consistency: %.0f%%", a.Document.ConsistencyScore*100))
	}

	var actions []string
	switch a.RiskLevel {
	case domain.RiskHigh:
		actions = []string{
			"Immediate investigation required",
			"Verify all medical treatment appropriateness",
			"Check policy compliance and coverage limits",
			"Contact hospital for treatment justification",
		}
	case domain.RiskMedium:
		actions = []string{
			"Detailed medical review required",
			"Verify treatment duration and room type appropriateness",
			"Check for procedure unbundling or upcoding",
			"Validate policy coverage and exclusions",
		}
	default:
		actions = []string{
			"Standard processing recommended",
			"Verify key documents authenticity",
		}
	}

	return domain.DetailedAnalysis{
		PrimaryReason:    reason,
		RiskFactors:      factors,
		SuggestedActions: actions,
	}
}
