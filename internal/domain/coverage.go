package domain

// Policy validation statuses.
const (
	PolicyValid   = "VALID"
	PolicyExpired = "EXPIRED"
)

// CoverageResult is the output of the coverage validator.
type CoverageResult struct {
	PolicyValidation PolicyValidation `json:"policy_validation"`
	CoverageLimits   CoverageLimits   `json:"coverage_limits"`
	ExclusionsFound  []string         `json:"exclusions_found"`
	CoPayApplicable  float64          `json:"co_pay_applicable"` // fraction in [0,1]
}

// PolicyValidation records the policy-date check.
type PolicyValidation struct {
	Status  string   `json:"status"` // VALID / EXPIRED
	Reasons []string `json:"reasons,omitempty"`
}

// CoverageLimits records the limits applied and any that were exceeded.
type CoverageLimits struct {
	RoomRentLimit  float64  `json:"room_rent_limit"`
	ICULimit       float64  `json:"icu_limit"`
	SurgeryLimit   float64  `json:"surgery_limit"`
	ExceededLimits []string `json:"exceeded_limits"`
}
