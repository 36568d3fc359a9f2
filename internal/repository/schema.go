package repository

// Schema definitions for the Heron database.
// Compatible with both SQLite and PostgreSQL.

const schemaClaims = `
CREATE TABLE IF NOT EXISTS claims (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    policy_number TEXT NOT NULL,
    patient_name TEXT NOT NULL,
    hospital_name TEXT,
    diagnosis TEXT,
    total_amount REAL NOT NULL DEFAULT 0,
    admission_date TEXT,
    created_at TIMESTAMP NOT NULL,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_claims_tenant ON claims(tenant_id);
CREATE INDEX IF NOT EXISTS idx_claims_policy ON claims(tenant_id, policy_number);
CREATE INDEX IF NOT EXISTS idx_claims_created ON claims(tenant_id, created_at);
`

const schemaRuleConfigs = `
CREATE TABLE IF NOT EXISTS rule_configs (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    expression TEXT NOT NULL,
    bands TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_rule_configs_tenant ON rule_configs(tenant_id);
CREATE INDEX IF NOT EXISTS idx_rule_configs_enabled ON rule_configs(tenant_id, enabled);
`

const schemaAdjudications = `
CREATE TABLE IF NOT EXISTS adjudications (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    claim_id TEXT NOT NULL,
    status TEXT NOT NULL,
    approved_amount REAL NOT NULL DEFAULT 0,
    fraud_score REAL NOT NULL DEFAULT 0,
    medical_score REAL NOT NULL DEFAULT 0,
    timestamp TIMESTAMP NOT NULL,
    medical_validation TEXT NOT NULL,
    fraud_analysis TEXT NOT NULL,
    coverage_analysis TEXT NOT NULL,
    final_decision TEXT NOT NULL,
    rule_results TEXT,
    typology_results TEXT,
    metadata TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_adjudications_tenant ON adjudications(tenant_id);
CREATE INDEX IF NOT EXISTS idx_adjudications_claim ON adjudications(tenant_id, claim_id);
CREATE INDEX IF NOT EXISTS idx_adjudications_status ON adjudications(tenant_id, status);
CREATE INDEX IF NOT EXISTS idx_adjudications_fraud ON adjudications(tenant_id, fraud_score);
`

// schemaTypologies defines the typologies table.
// Typologies group multiple rules with weights to calculate composite fraud scores.
// Compatible with both SQLite and PostgreSQL.
const schemaTypologies = `
CREATE TABLE IF NOT EXISTS typologies (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    version TEXT NOT NULL,
    rules TEXT NOT NULL,
    alert_threshold REAL NOT NULL DEFAULT 0.6,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id, version)
);

CREATE INDEX IF NOT EXISTS idx_typologies_tenant ON typologies(tenant_id);
CREATE INDEX IF NOT EXISTS idx_typologies_enabled ON typologies(tenant_id, enabled);
CREATE INDEX IF NOT EXISTS idx_typologies_name ON typologies(tenant_id, name);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaClaims,
		schemaRuleConfigs,
		schemaAdjudications,
		schemaTypologies,
	}
}
