package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/pipeline"
	"github.com/openclaims/heron/internal/rules"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo           domain.Repository
	cache          domain.Cache
	bus            domain.EventBus
	engine         *rules.Engine
	typologyEngine *rules.TypologyEngine
	adjudicator    *pipeline.Adjudicator
	kb             *knowledge.Base
	version        string
	mode           domain.AdjudicationMode
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *rules.Engine, typologyEngine *rules.TypologyEngine, adjudicator *pipeline.Adjudicator, kb *knowledge.Base, version string, mode domain.AdjudicationMode) *Handler {
	if mode == "" {
		mode = domain.ModeSync
	}
	return &Handler{
		repo:           repo,
		cache:          cache,
		bus:            bus,
		engine:         engine,
		typologyEngine: typologyEngine,
		adjudicator:    adjudicator,
		kb:             kb,
		version:        version,
		mode:           mode,
	}
}

// claimEnvelope is the bus payload for async intake. Field names must stay
// in sync with the worker's ClaimMessage.
type claimEnvelope struct {
	ClaimID  string               `json:"claimId"`
	TenantID string               `json:"tenantId"`
	TraceID  string               `json:"traceId,omitempty"`
	Claim    *domain.ClaimRequest `json:"claim"`
}

// QueuedResponse is returned for async adjudication.
type QueuedResponse struct {
	ClaimID string `json:"claim_id"`
	Status  string `json:"status"`
	TraceID string `json:"trace_id,omitempty"`
}

// Adjudicate handles POST /adjudicate requests.
func (h *Handler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var req domain.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate required fields
	if req.PolicyNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "policy_number is required",
		})
		return
	}
	if req.PatientName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "patient_name is required",
		})
		return
	}
	if req.TotalClaimAmount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "total_claim_amount must be positive",
		})
		return
	}

	claimID := uuid.New().String()

	// Async mode: hand the claim to the worker via the bus
	if h.mode == domain.ModeAsync && h.bus != nil {
		envelope := claimEnvelope{
			ClaimID:  claimID,
			TenantID: tenantID,
			TraceID:  traceID,
			Claim:    &req,
		}
		payload, _ := json.Marshal(envelope)
		if err := h.bus.Publish(ctx, tenantID, domain.TopicClaimReceived, payload); err != nil {
			slog.Error("failed to queue claim", "claim_id", claimID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to queue claim",
			})
			return
		}

		writeJSON(w, http.StatusAccepted, QueuedResponse{
			ClaimID: claimID,
			Status:  "QUEUED",
			TraceID: traceID,
		})
		return
	}

	// Sync mode: adjudicate inline
	claim := req.ToClaim(claimID, tenantID)

	if h.repo != nil {
		if err := h.repo.SaveClaim(ctx, tenantID, claim); err != nil {
			slog.Error("failed to save claim", "claim_id", claimID, "error", err)
			// Adjudication proceeds; persistence failures surface in ops logs.
		}
	}

	adj := h.adjudicator.Adjudicate(ctx, &pipeline.Input{
		TenantID:  tenantID,
		Claim:     claim,
		TraceID:   traceID,
		StartTime: start,
	})

	if h.repo != nil {
		if err := h.repo.SaveAdjudication(ctx, tenantID, adj); err != nil {
			slog.Error("failed to save adjudication", "claim_id", claimID, "error", err)
		}
	}

	if h.cache != nil {
		summary := &domain.ClaimSummary{
			ClaimID:        claim.ClaimID,
			PolicyNumber:   claim.PolicyNumber,
			Diagnosis:      claim.Diagnosis,
			Status:         adj.Final.Status,
			ApprovedAmount: adj.Final.ApprovedAmount,
			FraudScore:     adj.FraudScore,
			RiskLevel:      adj.Fraud.RiskLevel,
			Timestamp:      adj.Timestamp.Format(time.RFC3339),
		}
		_ = h.cache.SetClaimSummary(ctx, tenantID, claim.ClaimID, summary, 10*time.Minute)
	}

	writeJSON(w, http.StatusOK, adj.ToResponse())
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// GetAdjudication retrieves an adjudication by ID.
func (h *Handler) GetAdjudication(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	adjID := chi.URLParam(r, "id")

	if adjID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "adjudication id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	adj, err := h.repo.GetAdjudication(ctx, tenantID, adjID)
	if err != nil {
		slog.Error("failed to get adjudication", "id", adjID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "adjudication not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, adj)
}

// ListAdjudications lists adjudications filtered by decision status.
func (h *Handler) ListAdjudications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = domain.StatusUnderReview
	}
	switch status {
	case domain.StatusApproved, domain.StatusDenied, domain.StatusUnderReview:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "status must be APPROVED, DENIED, or UNDER_REVIEW",
		})
		return
	}

	adjudications, err := h.repo.ListAdjudicationsByStatus(ctx, tenantID, status)
	if err != nil {
		slog.Error("failed to list adjudications", "status", status, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list adjudications",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"adjudications": adjudications,
		"count":         len(adjudications),
		"status":        status,
	})
}

// ListHighRiskAdjudications lists adjudications above a fraud-score threshold.
func (h *Handler) ListHighRiskAdjudications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	threshold := 0.7
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "threshold must be a number between 0 and 1",
			})
			return
		}
		threshold = v
	}

	adjudications, err := h.repo.ListHighRiskAdjudications(ctx, tenantID, threshold)
	if err != nil {
		slog.Error("failed to list high-risk adjudications", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list adjudications",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"adjudications": adjudications,
		"count":         len(adjudications),
		"threshold":     threshold,
	})
}

// GetClaim retrieves a claim by ID.
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	claimID := chi.URLParam(r, "id")

	if claimID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "claim id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	claim, err := h.repo.GetClaim(ctx, tenantID, claimID)
	if err != nil {
		slog.Error("failed to get claim", "id", claimID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "claim not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, claim)
}

// GetClaimSummary returns the cached adjudication summary for a claim,
// avoiding a repository round trip for dashboard lookups.
func (h *Handler) GetClaimSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	claimID := chi.URLParam(r, "id")

	if h.cache == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "cache not available",
		})
		return
	}

	summary, err := h.cache.GetClaimSummary(ctx, tenantID, claimID)
	if err != nil {
		slog.Error("failed to get claim summary", "id", claimID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get claim summary",
		})
		return
	}
	if summary == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "claim summary not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ListDiseases returns the diagnoses the knowledge base covers.
func (h *Handler) ListDiseases(w http.ResponseWriter, r *http.Request) {
	if h.kb == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "knowledge base not available",
		})
		return
	}

	names := h.kb.DiseaseNames()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"diseases": names,
		"count":    len(names),
	})
}

// GetDisease returns the full profile for one disease, looked up the same
// way claim diagnoses are matched.
func (h *Handler) GetDisease(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if h.kb == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "knowledge base not available",
		})
		return
	}

	profile, ok := h.kb.Lookup(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "disease not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// ListRules returns all loaded rules from the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	// Return rules currently loaded in the engine (sourced from database)
	loadedRules := h.engine.GetLoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":  loadedRules,
		"count":  len(loadedRules),
		"source": "database",
	})
}

// GetRule retrieves a rule by ID from the loaded engine rules.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	// Check rules loaded in the engine (from database)
	for _, rule := range h.engine.GetLoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Expression  string            `json:"expression"`
	Bands       []domain.RuleBand `json:"bands"`
	Weight      float64           `json:"weight"`
	Enabled     bool              `json:"enabled"`
}

// CreateRule creates a new rule and saves it to the database.
// Rules are saved globally (tenant_id = "*") so they apply to all tenants.
// After saving, call POST /rules/reload to hot-reload into the engine.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate
	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	// Create rule config (global tenant)
	ruleConfig := &domain.RuleConfig{
		ID:          req.ID,
		TenantID:    GlobalTenantID,
		Name:        req.Name,
		Description: req.Description,
		Version:     "1.0.0",
		Expression:  req.Expression,
		Bands:       req.Bands,
		Weight:      req.Weight,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to load
	if err := h.engine.LoadRule(ruleConfig); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	// Persist to repository (global tenant ID)
	if h.repo != nil {
		if err := h.repo.SaveRuleConfig(ctx, GlobalTenantID, ruleConfig); err != nil {
			slog.Error("failed to save rule config", "id", ruleConfig.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	slog.Info("rule created", "id", ruleConfig.ID, "name", ruleConfig.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule":    ruleConfig,
		"message": "Rule created. Call POST /rules/reload to apply changes.",
	})
}

// GlobalTenantID is used for rules that apply to all tenants.
const GlobalTenantID = "*"

// ReloadRules reloads all rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	// Load rules from database (global rules)
	dbRules, err := h.repo.ListRuleConfigs(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list rules from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load rules from database",
		})
		return
	}

	// Reload into engine
	if err := h.engine.ReloadRules(dbRules); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("rules reloaded from database", "count", len(dbRules))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rules reloaded successfully",
		"count":   len(dbRules),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// ============================================================================
// TYPOLOGY HANDLERS
// ============================================================================

// CreateTypologyRequest is the request body for creating a typology.
type CreateTypologyRequest struct {
	ID             string                      `json:"id"`
	Name           string                      `json:"name"`
	Description    string                      `json:"description,omitempty"`
	Rules          []domain.TypologyRuleWeight `json:"rules"`
	AlertThreshold float64                     `json:"alertThreshold"`
	Enabled        bool                        `json:"enabled"`
}

// ListTypologies returns all loaded typologies.
func (h *Handler) ListTypologies(w http.ResponseWriter, r *http.Request) {
	if h.typologyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "typology engine not available",
		})
		return
	}

	typologies := h.typologyEngine.GetLoadedTypologies()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"typologies": typologies,
		"count":      len(typologies),
		"source":     "database",
	})
}

// GetTypology retrieves a typology by ID.
func (h *Handler) GetTypology(w http.ResponseWriter, r *http.Request) {
	typologyID := chi.URLParam(r, "id")

	if typologyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "typology id is required",
		})
		return
	}

	if h.typologyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "typology engine not available",
		})
		return
	}

	// Check typologies loaded in the engine
	for _, t := range h.typologyEngine.GetLoadedTypologies() {
		if t.ID == typologyID {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "typology not found",
	})
}

// CreateTypology creates a new typology and saves it to the database.
func (h *Handler) CreateTypology(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTypologyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate required fields
	if req.ID == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id and name are required",
		})
		return
	}

	if len(req.Rules) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "at least one rule is required",
		})
		return
	}

	// Validate rules exist in engine and weights are valid
	loadedRules := h.engine.GetLoadedRules()
	ruleIDSet := make(map[string]bool, len(loadedRules))
	for _, r := range loadedRules {
		ruleIDSet[r.ID] = true
	}

	var totalWeight float64
	for _, rule := range req.Rules {
		if rule.RuleID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "rule_id cannot be empty",
			})
			return
		}
		if !ruleIDSet[rule.RuleID] {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("rule_id '%s' does not exist in rule engine", rule.RuleID),
			})
			return
		}
		if rule.Weight < 0 || rule.Weight > 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "rule weight must be between 0 and 1",
			})
			return
		}
		totalWeight += rule.Weight
	}

	// Warn if weights don't sum to approximately 1.0 (allow 0.01 tolerance)
	if totalWeight < 0.99 || totalWeight > 1.01 {
		slog.Warn("typology weights do not sum to 1.0",
			"typology_id", req.ID,
			"total_weight", totalWeight,
		)
	}

	// Validate threshold - must be > 0 to avoid triggering on every claim
	if req.AlertThreshold <= 0 || req.AlertThreshold > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "alertThreshold must be between 0 (exclusive) and 1",
		})
		return
	}

	// Create typology config (global tenant)
	typology := &domain.Typology{
		ID:             req.ID,
		TenantID:       GlobalTenantID,
		Name:           req.Name,
		Description:    req.Description,
		Version:        "1.0.0",
		Rules:          req.Rules,
		AlertThreshold: req.AlertThreshold,
		Enabled:        req.Enabled,
	}

	// Persist to repository
	if h.repo != nil {
		if err := h.repo.SaveTypology(ctx, GlobalTenantID, typology); err != nil {
			slog.Error("failed to save typology", "id", typology.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save typology",
			})
			return
		}
	}

	slog.Info("typology created", "id", typology.ID, "name", typology.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"typology": typology,
		"message":  "Typology created. Call POST /typologies/reload to apply changes.",
	})
}

// UpdateTypology updates an existing typology.
func (h *Handler) UpdateTypology(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typologyID := chi.URLParam(r, "id")

	if typologyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "typology id is required",
		})
		return
	}

	var req CreateTypologyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate rules
	for _, rule := range req.Rules {
		if rule.RuleID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "rule_id cannot be empty",
			})
			return
		}
		if rule.Weight < 0 || rule.Weight > 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "rule weight must be between 0 and 1",
			})
			return
		}
	}

	// Update typology
	typology := &domain.Typology{
		ID:             typologyID,
		TenantID:       GlobalTenantID,
		Name:           req.Name,
		Description:    req.Description,
		Version:        "1.0.0",
		Rules:          req.Rules,
		AlertThreshold: req.AlertThreshold,
		Enabled:        req.Enabled,
	}

	if h.repo != nil {
		if err := h.repo.SaveTypology(ctx, GlobalTenantID, typology); err != nil {
			slog.Error("failed to update typology", "id", typologyID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to update typology",
			})
			return
		}
	}

	slog.Info("typology updated", "id", typologyID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"typology": typology,
		"message":  "Typology updated. Call POST /typologies/reload to apply changes.",
	})
}

// DeleteTypology deletes a typology and auto-reloads the engine.
func (h *Handler) DeleteTypology(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typologyID := chi.URLParam(r, "id")

	if typologyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "typology id is required",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.DeleteTypology(ctx, GlobalTenantID, typologyID); err != nil {
			slog.Error("failed to delete typology", "id", typologyID, "error", err)
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "typology not found",
			})
			return
		}

		// Auto-reload typology engine after delete
		if h.typologyEngine != nil {
			dbTypologies, err := h.repo.ListTypologies(ctx, GlobalTenantID)
			if err != nil {
				slog.Error("failed to reload typologies after delete", "error", err)
			} else {
				h.typologyEngine.ReloadTypologies(dbTypologies)
				slog.Info("typologies auto-reloaded after delete", "count", len(dbTypologies))
			}
		}
	}

	slog.Info("typology deleted", "id", typologyID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Typology deleted and engine reloaded.",
	})
}

// ReloadTypologies reloads all typologies from the database into the engine.
func (h *Handler) ReloadTypologies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if h.typologyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "typology engine not available",
		})
		return
	}

	// Load typologies from database (global)
	dbTypologies, err := h.repo.ListTypologies(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list typologies from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load typologies from database",
		})
		return
	}

	// Reload into engine
	h.typologyEngine.ReloadTypologies(dbTypologies)

	slog.Info("typologies reloaded from database", "count", len(dbTypologies))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "typologies reloaded successfully",
		"count":   len(dbTypologies),
	})
}
