// Package domain defines the core interfaces and types for Heron.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Claim operations
	SaveClaim(ctx context.Context, tenantID string, claim *ClaimRecord) error
	GetClaim(ctx context.Context, tenantID string, claimID string) (*ClaimRecord, error)
	GetClaimsByPolicy(ctx context.Context, tenantID string, policyNumber string, since time.Time) ([]*ClaimRecord, error)

	// Rule configuration operations
	SaveRuleConfig(ctx context.Context, tenantID string, rule *RuleConfig) error
	GetRuleConfig(ctx context.Context, tenantID string, ruleID string) (*RuleConfig, error)
	ListRuleConfigs(ctx context.Context, tenantID string) ([]*RuleConfig, error)

	// Adjudication results
	SaveAdjudication(ctx context.Context, tenantID string, adj *Adjudication) error
	GetAdjudication(ctx context.Context, tenantID string, adjID string) (*Adjudication, error)
	ListAdjudicationsByStatus(ctx context.Context, tenantID string, status string) ([]*Adjudication, error)
	ListHighRiskAdjudications(ctx context.Context, tenantID string, threshold float64) ([]*Adjudication, error)

	// Typology operations
	SaveTypology(ctx context.Context, tenantID string, typology *Typology) error
	GetTypology(ctx context.Context, tenantID string, typologyID string) (*Typology, error)
	ListTypologies(ctx context.Context, tenantID string) ([]*Typology, error)
	DeleteTypology(ctx context.Context, tenantID string, typologyID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
