// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openclaims/heron/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveClaim stores a claim with tenant isolation. The full record is
// persisted as JSON; query-relevant fields are duplicated into columns.
func (r *SQLRepository) SaveClaim(ctx context.Context, tenantID string, claim *domain.ClaimRecord) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	payload, err := json.Marshal(claim)
	if err != nil {
		return fmt.Errorf("failed to marshal claim: %w", err)
	}

	createdAt := claim.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO claims (
			id, tenant_id, policy_number, patient_name, hospital_name,
			diagnosis, total_amount, admission_date, created_at, payload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		claim.ClaimID, tenantID, claim.PolicyNumber,
		claim.PatientName, claim.HospitalName,
		claim.Diagnosis, claim.TotalClaimAmount, claim.AdmissionDate,
		createdAt, string(payload),
	)
	return err
}

// GetClaim retrieves a claim by ID with tenant isolation.
func (r *SQLRepository) GetClaim(ctx context.Context, tenantID string, claimID string) (*domain.ClaimRecord, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT payload FROM claims
		WHERE tenant_id = ? AND id = ?
	`

	var payload string
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, claimID).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var claim domain.ClaimRecord
	if err := json.Unmarshal([]byte(payload), &claim); err != nil {
		return nil, fmt.Errorf("failed to parse claim payload: %w", err)
	}

	return &claim, nil
}

// GetClaimsByPolicy retrieves claims filed against a policy since a given
// time, with tenant isolation. Used for claim-frequency checks.
func (r *SQLRepository) GetClaimsByPolicy(ctx context.Context, tenantID string, policyNumber string, since time.Time) ([]*domain.ClaimRecord, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT payload FROM claims
		WHERE tenant_id = ?
		  AND policy_number = ?
		  AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, policyNumber, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var claims []*domain.ClaimRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}

		var claim domain.ClaimRecord
		if err := json.Unmarshal([]byte(payload), &claim); err != nil {
			return nil, fmt.Errorf("failed to parse claim payload: %w", err)
		}
		claims = append(claims, &claim)
	}

	return claims, rows.Err()
}

// SaveRuleConfig stores a rule configuration with tenant isolation.
func (r *SQLRepository) SaveRuleConfig(ctx context.Context, tenantID string, rule *domain.RuleConfig) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	bands, _ := json.Marshal(rule.Bands)

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO rule_configs (
			id, tenant_id, name, description, version, expression, bands, weight, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			bands = excluded.bands,
			weight = excluded.weight,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, tenantID, rule.Name, rule.Description,
		rule.Version, rule.Expression, string(bands), rule.Weight, enabled,
		now, now,
	)
	return err
}

// GetRuleConfig retrieves a rule configuration with tenant isolation.
func (r *SQLRepository) GetRuleConfig(ctx context.Context, tenantID string, ruleID string) (*domain.RuleConfig, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, bands, weight, enabled
		FROM rule_configs
		WHERE tenant_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var cfg domain.RuleConfig
	var bands string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, ruleID).Scan(
		&cfg.ID, &cfg.TenantID, &cfg.Name, &cfg.Description,
		&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	cfg.Enabled = enabled == 1
	json.Unmarshal([]byte(bands), &cfg.Bands)

	return &cfg, nil
}

// ListRuleConfigs retrieves all active rule configurations for a tenant.
func (r *SQLRepository) ListRuleConfigs(ctx context.Context, tenantID string) ([]*domain.RuleConfig, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, expression, bands, weight, enabled
		FROM rule_configs
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*domain.RuleConfig
	for rows.Next() {
		var cfg domain.RuleConfig
		var bands string
		var enabled int

		if err := rows.Scan(
			&cfg.ID, &cfg.TenantID, &cfg.Name, &cfg.Description,
			&cfg.Version, &cfg.Expression, &bands, &cfg.Weight, &enabled,
		); err != nil {
			return nil, err
		}

		cfg.Enabled = enabled == 1
		json.Unmarshal([]byte(bands), &cfg.Bands)
		configs = append(configs, &cfg)
	}

	return configs, rows.Err()
}

// SaveAdjudication stores an adjudication result with tenant isolation.
func (r *SQLRepository) SaveAdjudication(ctx context.Context, tenantID string, adj *domain.Adjudication) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	medical, _ := json.Marshal(adj.Medical)
	fraud, _ := json.Marshal(adj.Fraud)
	coverage, _ := json.Marshal(adj.Coverage)
	decision, _ := json.Marshal(adj.Final)
	ruleResults, _ := json.Marshal(adj.RuleResults)
	typologyResults, _ := json.Marshal(adj.TypologyResults)
	metadata, _ := json.Marshal(adj.Metadata)

	query := `
		INSERT INTO adjudications (
			id, tenant_id, claim_id, status, approved_amount,
			fraud_score, medical_score, timestamp,
			medical_validation, fraud_analysis, coverage_analysis,
			final_decision, rule_results, typology_results, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		adj.ID, tenantID, adj.ClaimID,
		adj.Final.Status, adj.Final.ApprovedAmount,
		adj.FraudScore, adj.Medical.AppropriatenessScore, adj.Timestamp,
		string(medical), string(fraud), string(coverage),
		string(decision), string(ruleResults), string(typologyResults),
		string(metadata),
	)
	return err
}

// GetAdjudication retrieves an adjudication by ID with tenant isolation.
func (r *SQLRepository) GetAdjudication(ctx context.Context, tenantID string, adjID string) (*domain.Adjudication, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, claim_id, fraud_score, timestamp,
			   medical_validation, fraud_analysis, coverage_analysis,
			   final_decision, rule_results, typology_results, metadata
		FROM adjudications
		WHERE tenant_id = ? AND id = ?
	`

	return r.scanAdjudication(r.db.QueryRowContext(ctx, r.rebind(query), tenantID, adjID))
}

// ListAdjudicationsByStatus retrieves adjudications with a given decision
// status for a tenant, most recent first.
func (r *SQLRepository) ListAdjudicationsByStatus(ctx context.Context, tenantID string, status string) ([]*domain.Adjudication, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, claim_id, fraud_score, timestamp,
			   medical_validation, fraud_analysis, coverage_analysis,
			   final_decision, rule_results, typology_results, metadata
		FROM adjudications
		WHERE tenant_id = ? AND status = ?
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectAdjudications(rows)
}

// ListHighRiskAdjudications retrieves adjudications whose fraud score meets
// or exceeds the threshold, highest risk first.
func (r *SQLRepository) ListHighRiskAdjudications(ctx context.Context, tenantID string, threshold float64) ([]*domain.Adjudication, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, claim_id, fraud_score, timestamp,
			   medical_validation, fraud_analysis, coverage_analysis,
			   final_decision, rule_results, typology_results, metadata
		FROM adjudications
		WHERE tenant_id = ? AND fraud_score >= ?
		ORDER BY fraud_score DESC, timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.collectAdjudications(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanAdjudication(row rowScanner) (*domain.Adjudication, error) {
	var adj domain.Adjudication
	var medical, fraud, coverage, decision, ruleResults, typologyResults, metadata string

	err := row.Scan(
		&adj.ID, &adj.TenantID, &adj.ClaimID, &adj.FraudScore, &adj.Timestamp,
		&medical, &fraud, &coverage, &decision, &ruleResults, &typologyResults, &metadata,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	json.Unmarshal([]byte(medical), &adj.Medical)
	json.Unmarshal([]byte(fraud), &adj.Fraud)
	json.Unmarshal([]byte(coverage), &adj.Coverage)
	json.Unmarshal([]byte(decision), &adj.Final)
	json.Unmarshal([]byte(ruleResults), &adj.RuleResults)
	json.Unmarshal([]byte(typologyResults), &adj.TypologyResults)
	json.Unmarshal([]byte(metadata), &adj.Metadata)

	return &adj, nil
}

func (r *SQLRepository) collectAdjudications(rows *sql.Rows) ([]*domain.Adjudication, error) {
	var adjudications []*domain.Adjudication
	for rows.Next() {
		adj, err := r.scanAdjudication(rows)
		if err != nil {
			return nil, err
		}
		adjudications = append(adjudications, adj)
	}
	return adjudications, rows.Err()
}

// SaveTypology stores a typology configuration with tenant isolation.
func (r *SQLRepository) SaveTypology(ctx context.Context, tenantID string, typology *domain.Typology) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	rules, _ := json.Marshal(typology.Rules)

	enabled := 0
	if typology.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO typologies (
			id, tenant_id, name, description, version, rules, alert_threshold, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id, version) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			rules = excluded.rules,
			alert_threshold = excluded.alert_threshold,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		typology.ID, tenantID, typology.Name, typology.Description,
		typology.Version, string(rules), typology.AlertThreshold, enabled,
		now, now,
	)
	return err
}

// GetTypology retrieves a typology configuration with tenant isolation.
func (r *SQLRepository) GetTypology(ctx context.Context, tenantID string, typologyID string) (*domain.Typology, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, rules, alert_threshold, enabled
		FROM typologies
		WHERE tenant_id = ? AND id = ? AND enabled = 1
		ORDER BY version DESC
		LIMIT 1
	`

	var t domain.Typology
	var rules string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, typologyID).Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Description,
		&t.Version, &rules, &t.AlertThreshold, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.Enabled = enabled == 1
	if err := json.Unmarshal([]byte(rules), &t.Rules); err != nil {
		return nil, fmt.Errorf("failed to parse typology rules: %w", err)
	}

	return &t, nil
}

// ListTypologies retrieves all active typology configurations for a tenant.
func (r *SQLRepository) ListTypologies(ctx context.Context, tenantID string) ([]*domain.Typology, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, version, rules, alert_threshold, enabled
		FROM typologies
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var typologies []*domain.Typology
	for rows.Next() {
		var t domain.Typology
		var rules string
		var enabled int

		if err := rows.Scan(
			&t.ID, &t.TenantID, &t.Name, &t.Description,
			&t.Version, &rules, &t.AlertThreshold, &enabled,
		); err != nil {
			return nil, err
		}

		t.Enabled = enabled == 1
		if err := json.Unmarshal([]byte(rules), &t.Rules); err != nil {
			return nil, fmt.Errorf("failed to parse typology rules for %s: %w", t.ID, err)
		}
		typologies = append(typologies, &t)
	}

	return typologies, rows.Err()
}

// DeleteTypology soft-deletes a typology by setting enabled = 0.
func (r *SQLRepository) DeleteTypology(ctx context.Context, tenantID string, typologyID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		UPDATE typologies
		SET enabled = 0, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), tenantID, typologyID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
