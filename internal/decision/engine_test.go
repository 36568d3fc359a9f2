package decision

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/openclaims/heron/internal/domain"
)

func newEngine() *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func validCoverage() domain.CoverageResult {
	return domain.CoverageResult{
		PolicyValidation: domain.PolicyValidation{Status: domain.PolicyValid},
		CoverageLimits:   domain.CoverageLimits{RoomRentLimit: 5000, SurgeryLimit: 150000},
		CoPayApplicable:  0.10,
	}
}

func claimWith(amount float64) *domain.ClaimRecord {
	return &domain.ClaimRecord{
		ClaimID:          "CLM-4001",
		Diagnosis:        "dengue fever",
		TotalClaimAmount: amount,
	}
}

func TestDecideApproval(t *testing.T) {
	e := newEngine()
	d := e.Decide(claimWith(40000), 0.1, 0.95, validCoverage())

	if d.Status != domain.StatusApproved {
		t.Fatalf("status = %s, want APPROVED (reasons: %v %v)", d.Status, d.DenialReasons, d.ReviewReasons)
	}
	if d.ApprovedAmount != 36000 {
		t.Errorf("approved = %.2f, want 36000 (10%% co-pay)", d.ApprovedAmount)
	}
	if d.CoPayAmount != 4000 {
		t.Errorf("co-pay = %.2f, want 4000", d.CoPayAmount)
	}
	if d.PatientResponsibility != 4000 {
		t.Errorf("patient responsibility = %.2f, want 4000", d.PatientResponsibility)
	}
}

func TestDecideDenialTriggers(t *testing.T) {
	e := newEngine()

	cases := []struct {
		name     string
		fraud    float64
		medical  float64
		coverage domain.CoverageResult
		reason   string
	}{
		{"expired policy", 0.1, 0.95,
			domain.CoverageResult{PolicyValidation: domain.PolicyValidation{Status: domain.PolicyExpired}, CoPayApplicable: 0.10},
			"Policy expired"},
		{"exclusions", 0.1, 0.95,
			domain.CoverageResult{PolicyValidation: domain.PolicyValidation{Status: domain.PolicyValid}, ExclusionsFound: []string{"rhinoplasty"}, CoPayApplicable: 0.10},
			"Excluded procedures"},
		{"high fraud", 0.9, 0.95, validCoverage(), "High fraud risk"},
		{"low medical", 0.1, 0.2, validCoverage(), "Medically inappropriate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := e.Decide(claimWith(40000), tc.fraud, tc.medical, tc.coverage)
			if d.Status != domain.StatusDenied {
				t.Fatalf("status = %s, want DENIED", d.Status)
			}
			if d.ApprovedAmount != 0 {
				t.Errorf("approved = %.2f, want 0", d.ApprovedAmount)
			}
			found := false
			for _, r := range d.DenialReasons {
				if strings.Contains(r, tc.reason) {
					found = true
				}
			}
			if !found {
				t.Errorf("denial reasons %v missing %q", d.DenialReasons, tc.reason)
			}
		})
	}
}

// Scenario: a claim that is otherwise perfectly clean is still denied when
// the fraud score alone crosses the denial line.
func TestDecideFraudDenialBeatsCleanMedical(t *testing.T) {
	e := newEngine()
	d := e.Decide(claimWith(40000), 0.9, 0.9, validCoverage())
	if d.Status != domain.StatusDenied {
		t.Fatalf("status = %s, want DENIED", d.Status)
	}
	if len(d.ApprovalReasons) != 0 {
		t.Errorf("approval reasons should not fire after denial: %v", d.ApprovalReasons)
	}
}

func TestDecideReviewTriggers(t *testing.T) {
	e := newEngine()

	t.Run("moderate fraud", func(t *testing.T) {
		d := e.Decide(claimWith(40000), 0.5, 0.95, validCoverage())
		if d.Status != domain.StatusUnderReview {
			t.Fatalf("status = %s, want UNDER_REVIEW", d.Status)
		}
	})

	t.Run("limits exceeded", func(t *testing.T) {
		cov := validCoverage()
		cov.CoverageLimits.ExceededLimits = []string{"Daily room rent 8000.00 exceeds limit 5000"}
		d := e.Decide(claimWith(40000), 0.1, 0.95, cov)
		if d.Status != domain.StatusUnderReview {
			t.Fatalf("status = %s, want UNDER_REVIEW", d.Status)
		}
	})

	t.Run("borderline medical", func(t *testing.T) {
		d := e.Decide(claimWith(40000), 0.1, 0.7, validCoverage())
		if d.Status != domain.StatusUnderReview {
			t.Fatalf("medical 0.7 is not above the clear threshold, status = %s", d.Status)
		}
	})

	t.Run("missing diagnosis", func(t *testing.T) {
		claim := claimWith(40000)
		claim.Diagnosis = "  "
		d := e.Decide(claim, 0.1, 0.95, validCoverage())
		if d.Status == domain.StatusApproved {
			t.Fatal("claim without diagnosis must never be approved")
		}
		found := false
		for _, r := range d.ReviewReasons {
			if strings.Contains(r, "diagnosis") {
				found = true
			}
		}
		if !found {
			t.Errorf("review reasons %v missing diagnosis trigger", d.ReviewReasons)
		}
	})
}

// Review is a hard gate: even a claim that satisfies every approval
// condition goes to review when any review trigger fires.
func TestDecideReviewWinsOverApproval(t *testing.T) {
	e := newEngine()

	cov := validCoverage()
	cov.CoverageLimits.ExceededLimits = []string{"Surgery cost 200000 exceeds limit 150000"}
	d := e.Decide(claimWith(40000), 0.1, 0.95, cov)

	if len(d.ApprovalReasons) != 0 {
		t.Errorf("approval reasons fired alongside exceeded limits: %v", d.ApprovalReasons)
	}
	if d.Status != domain.StatusUnderReview {
		t.Errorf("status = %s, want UNDER_REVIEW", d.Status)
	}
	if d.ApprovedAmount != 0 {
		t.Errorf("approved = %.2f, want 0 for UNDER_REVIEW", d.ApprovedAmount)
	}
}

func TestDecideReconciliation(t *testing.T) {
	e := newEngine()

	amounts := []float64{40000, 33333.33, 0.01, 99999.99, 123456.78}
	fraudScores := []float64{0.1, 0.5, 0.9}
	for _, amount := range amounts {
		for _, fraud := range fraudScores {
			d := e.Decide(claimWith(amount), fraud, 0.95, validCoverage())
			sum := d.ApprovedAmount + d.PatientResponsibility
			if math.Abs(sum-amount) > 0.005 {
				t.Errorf("amount %.2f fraud %.1f: approved %.2f + responsibility %.2f = %.2f",
					amount, fraud, d.ApprovedAmount, d.PatientResponsibility, sum)
			}
		}
	}
}

func TestDecideAmbiguousDefault(t *testing.T) {
	e := newEngine()

	// Fraud exactly at 0.4: neither the approval condition (<0.4) nor the
	// moderate-fraud review band (>0.4) fires, and nothing else does.
	d := e.Decide(claimWith(40000), 0.4, 0.95, validCoverage())
	if d.Status != domain.StatusUnderReview {
		t.Fatalf("status = %s, want UNDER_REVIEW default", d.Status)
	}
	if len(d.DenialReasons)+len(d.ApprovalReasons)+len(d.ReviewReasons) != 0 {
		t.Errorf("expected no reasons, got %v %v %v", d.DenialReasons, d.ApprovalReasons, d.ReviewReasons)
	}
}
