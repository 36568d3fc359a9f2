package medical

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
)

func newValidator() *Validator {
	return NewValidator(knowledge.NewBase(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func dengueClaim() *domain.ClaimRecord {
	return &domain.ClaimRecord{
		ClaimID:           "CLM-1001",
		Diagnosis:         "Dengue Fever",
		TreatmentDuration: 5,
		TotalClaimAmount:  40000,
		Procedures:        []string{"iv_fluids", "blood_tests", "platelet_monitoring"},
		Medications:       []string{"paracetamol"},
		RoomType:          "general",
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestValidateCleanDengueClaim(t *testing.T) {
	v := newValidator()
	result := v.Validate(dengueClaim())

	if !almostEqual(result.AppropriatenessScore, 1.0) {
		t.Errorf("score = %.2f, want 1.0 (warnings %v, errors %v)",
			result.AppropriatenessScore, result.MedicalWarnings, result.MedicalErrors)
	}
	if !result.CostAnalysis.WithinGuidelines {
		t.Error("cost 40000 should be within dengue guidelines")
	}
	if result.Recommendation != domain.RecommendApprove {
		t.Errorf("recommendation = %s, want APPROVE", result.Recommendation)
	}
	if !result.IsMedicallyAppropriate {
		t.Error("clean claim should be medically appropriate")
	}
	if result.DiseaseIdentified != "Dengue Fever" {
		t.Errorf("disease = %s", result.DiseaseIdentified)
	}
}

func TestValidateExtendedStay(t *testing.T) {
	v := newValidator()

	baseline := v.Validate(dengueClaim())

	claim := dengueClaim()
	claim.TreatmentDuration = 12 // max typical is 7, 12 > 7*1.3
	result := v.Validate(claim)

	if len(result.MedicalErrors) == 0 {
		t.Fatal("expected a medical error for extended stay")
	}
	if delta := baseline.AppropriatenessScore - result.AppropriatenessScore; !almostEqual(delta, 0.3) {
		t.Errorf("extended stay penalty = %.2f, want exactly 0.3", delta)
	}
	// 12 days also exceeds 7*1.5, so the fraud indicator fires too.
	found := false
	for _, p := range result.FraudIndicators {
		if p.Pattern == "extended_stay" {
			found = true
		}
	}
	if !found {
		t.Error("expected extended_stay fraud indicator at 12 days")
	}
}

func TestValidateUnknownDiagnosis(t *testing.T) {
	v := newValidator()

	for _, diagnosis := range []string{"", "   ", "rare unseen condition"} {
		claim := dengueClaim()
		claim.Diagnosis = diagnosis
		result := v.Validate(claim)

		if result.Recommendation != domain.RecommendReview {
			t.Errorf("diagnosis %q: recommendation = %s, want REVIEW", diagnosis, result.Recommendation)
		}
		if !almostEqual(result.AppropriatenessScore, 0.5) {
			t.Errorf("diagnosis %q: score = %.2f, want 0.5", diagnosis, result.AppropriatenessScore)
		}
		if len(result.MedicalWarnings) != 1 || result.MedicalWarnings[0] != "Unknown diagnosis - limited validation possible" {
			t.Errorf("diagnosis %q: warnings = %v", diagnosis, result.MedicalWarnings)
		}
	}
}

func TestValidatePenaltyRules(t *testing.T) {
	v := newValidator()

	cases := []struct {
		name    string
		mutate  func(*domain.ClaimRecord)
		penalty float64
		isError bool
	}{
		{"short stay", func(c *domain.ClaimRecord) { c.TreatmentDuration = 1 }, 0.1, false},
		{"excessive cost", func(c *domain.ClaimRecord) { c.TotalClaimAmount = 90000 }, 0.4, true},
		{"unnecessary treatment", func(c *domain.ClaimRecord) { c.Procedures = append(c.Procedures, "MRI Brain") }, 0.2, true},
		{"missing required", func(c *domain.ClaimRecord) { c.Procedures = []string{"iv_fluids", "blood_tests"} }, 0.1, false},
		{"uncommon medication", func(c *domain.ClaimRecord) { c.Medications = append(c.Medications, "remdesivir") }, 0.05, false},
		{"luxury room", func(c *domain.ClaimRecord) { c.RoomType = "deluxe" }, 0.1, false},
	}

	baseline := v.Validate(dengueClaim()).AppropriatenessScore

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claim := dengueClaim()
			tc.mutate(claim)
			result := v.Validate(claim)

			if delta := baseline - result.AppropriatenessScore; !almostEqual(delta, tc.penalty) {
				t.Errorf("penalty = %.2f, want %.2f (warnings %v, errors %v)",
					delta, tc.penalty, result.MedicalWarnings, result.MedicalErrors)
			}
			if tc.isError && len(result.MedicalErrors) == 0 {
				t.Error("expected a medical error")
			}
			if !tc.isError && len(result.MedicalWarnings) == 0 {
				t.Error("expected a medical warning")
			}
		})
	}
}

func TestValidateMissingICU(t *testing.T) {
	v := newValidator()

	claim := &domain.ClaimRecord{
		ClaimID:           "CLM-1002",
		Diagnosis:         "heart attack",
		TreatmentDuration: 7,
		TotalClaimAmount:  300000,
		Procedures:        []string{"ecg", "angiography", "troponin_test"},
		RoomType:          "private",
	}
	result := v.Validate(claim)

	if almostEqual(result.AppropriatenessScore, 1.0) {
		t.Fatal("expected ICU penalty for heart attack in private room")
	}
	foundICUError := false
	for _, e := range result.MedicalErrors {
		if e == "ICU admission required for Heart Attack (Myocardial Infarction) but private room used" {
			foundICUError = true
		}
	}
	if !foundICUError {
		t.Errorf("missing ICU error, got %v", result.MedicalErrors)
	}
}

func TestValidateNeutralPharmacyLines(t *testing.T) {
	v := newValidator()

	claim := dengueClaim()
	claim.Medications = append(claim.Medications, "Pharmacy Charges", "Medical Consumables")
	result := v.Validate(claim)

	if !almostEqual(result.AppropriatenessScore, 1.0) {
		t.Errorf("generic billing lines should not be penalized, score = %.2f (warnings %v)",
			result.AppropriatenessScore, result.MedicalWarnings)
	}
}

func TestValidateRoomRentAbuseIndicator(t *testing.T) {
	v := newValidator()

	claim := dengueClaim()
	claim.RoomRent = 9000 // default limit 5000, threshold 7500
	result := v.Validate(claim)

	found := false
	for _, p := range result.FraudIndicators {
		if p.Pattern == "room_rent_abuse" && p.Severity == domain.SeverityHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("expected room_rent_abuse indicator, got %v", result.FraudIndicators)
	}
	if !almostEqual(result.AppropriatenessScore, 1.0) {
		t.Error("fraud indicators must not change the appropriateness score")
	}
}

// Round-trip: a claim built from a profile's own guideline values scores 1.0
// for every disease in the catalog.
func TestValidateRoundTripAllDiseases(t *testing.T) {
	kb := knowledge.NewBase()
	v := NewValidator(kb, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, p := range kb.Profiles() {
		t.Run(p.Key, func(t *testing.T) {
			claim := &domain.ClaimRecord{
				ClaimID:           "CLM-RT",
				Diagnosis:         p.Key,
				TreatmentDuration: (p.MinDays + p.MaxDays) / 2,
				TotalClaimAmount:  (p.MinCost + p.MaxCost) / 2,
				Procedures:        p.RequiredTreatments,
				Medications:       p.CommonMedications,
				RoomType:          p.RoomType,
			}
			result := v.Validate(claim)
			if !almostEqual(result.AppropriatenessScore, 1.0) {
				t.Errorf("score = %.2f, warnings %v, errors %v",
					result.AppropriatenessScore, result.MedicalWarnings, result.MedicalErrors)
			}
			if len(result.MedicalWarnings) != 0 || len(result.MedicalErrors) != 0 {
				t.Errorf("expected clean result, warnings %v errors %v",
					result.MedicalWarnings, result.MedicalErrors)
			}
		})
	}
}

// Adding any single violation never increases the score.
func TestValidateScoreMonotonicity(t *testing.T) {
	v := newValidator()
	baseline := v.Validate(dengueClaim()).AppropriatenessScore

	violations := []func(*domain.ClaimRecord){
		func(c *domain.ClaimRecord) { c.TreatmentDuration = 1 },
		func(c *domain.ClaimRecord) { c.TreatmentDuration = 30 },
		func(c *domain.ClaimRecord) { c.TotalClaimAmount = 500000 },
		func(c *domain.ClaimRecord) { c.Procedures = append(c.Procedures, "ct_scan") },
		func(c *domain.ClaimRecord) { c.Medications = append(c.Medications, "unlisted drug") },
		func(c *domain.ClaimRecord) { c.RoomType = "suite" },
	}
	for i, mutate := range violations {
		claim := dengueClaim()
		mutate(claim)
		score := v.Validate(claim).AppropriatenessScore
		if score > baseline {
			t.Errorf("violation %d increased score: %.2f > %.2f", i, score, baseline)
		}
		if score < 0 || score > 1 {
			t.Errorf("violation %d: score %.2f out of [0,1]", i, score)
		}
	}
}
