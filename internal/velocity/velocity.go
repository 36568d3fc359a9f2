// Package velocity provides claim-frequency calculation per policy.
package velocity

import (
	"context"
	"fmt"
	"time"

	"github.com/openclaims/heron/internal/domain"
)

// Service calculates how many claims a policy has filed in a time window.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewService creates a new velocity service.
func NewService(repo domain.Repository, cache domain.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetClaimCount returns the number of claims filed against a policy within a
// time window. This is the VelocityGetter signature the rule engine expects.
func (s *Service) GetClaimCount(ctx context.Context, tenantID, policyNumber string, windowSecs int) (int64, error) {
	if tenantID == "" || policyNumber == "" {
		return 0, fmt.Errorf("tenantID and policyNumber are required")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)

	if s.repo != nil {
		return s.countFromRepo(ctx, tenantID, policyNumber, since)
	}

	return 0, fmt.Errorf("no data source available")
}

// countFromRepo uses the repository to fetch and count claims.
func (s *Service) countFromRepo(ctx context.Context, tenantID, policyNumber string, since time.Time) (int64, error) {
	claims, err := s.repo.GetClaimsByPolicy(ctx, tenantID, policyNumber, since)
	if err != nil {
		return 0, fmt.Errorf("failed to get claims: %w", err)
	}
	return int64(len(claims)), nil
}

// GetVelocityGetter returns a VelocityGetter function for the rule engine.
func (s *Service) GetVelocityGetter() func(ctx context.Context, tenantID, policyNumber string, windowSecs int) (int64, error) {
	return s.GetClaimCount
}
