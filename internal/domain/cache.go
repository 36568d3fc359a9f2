package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// All methods require tenantID for strict multi-tenancy isolation.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, tenantID string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, tenantID string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, tenantID string, key string) error

	// GetClaimSummary retrieves a cached adjudication summary.
	GetClaimSummary(ctx context.Context, tenantID string, claimID string) (*ClaimSummary, error)

	// SetClaimSummary caches an adjudication summary for fast lookups.
	SetClaimSummary(ctx context.Context, tenantID string, claimID string, data *ClaimSummary, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used for claim-frequency checks (claims per policy in a time window).
	IncrementCounter(ctx context.Context, tenantID string, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// ClaimSummary holds cached adjudication data returned without a
// repository round trip.
type ClaimSummary struct {
	ClaimID        string  `json:"claim_id"`
	PolicyNumber   string  `json:"policy_number"`
	Diagnosis      string  `json:"diagnosis"`
	Status         string  `json:"status"`
	ApprovedAmount float64 `json:"approved_amount"`
	FraudScore     float64 `json:"fraud_score"`
	RiskLevel      string  `json:"risk_level"`
	Timestamp      string  `json:"timestamp"`
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
