package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/pipeline"
	"github.com/openclaims/heron/internal/rules"
)

// createTestServer creates a server with engine and adjudicator for testing.
func createTestServer() *Server {
	cfg := domain.ServerConfig{
		Host:         "localhost",
		Port:         8080,
		ReadTimeout:  30,
		WriteTimeout: 30,
	}

	// Create rule engine with test rules (no hardcoded builtin rules)
	engine, _ := rules.NewEngine(nil, 5)

	// Load a test rule that only flags very high amounts (>1000000)
	// so normal test claims don't trip the fraud score
	testRule := &domain.RuleConfig{
		ID:         "test-rule-001",
		Name:       "Very High Value Test Rule",
		Expression: "amount > 1000000.0 ? 1.0 : 0.0",
		Weight:     1.0,
		Enabled:    true,
	}
	engine.LoadRule(testRule)

	typologyEngine := rules.NewTypologyEngine()

	kb := knowledge.NewBase()
	adjudicator := pipeline.New(kb, engine, typologyEngine, nil)

	return NewServer(cfg, nil, nil, nil, engine, typologyEngine, adjudicator, kb, "test-v1", domain.ModeSync)
}

func cleanClaimRequest() domain.ClaimRequest {
	return domain.ClaimRequest{
		PolicyNumber:      "POL-2024-001",
		PatientName:       "Asha Verma",
		HospitalName:      "City Care Hospital",
		Diagnosis:         "Dengue Fever",
		TreatmentDuration: 5,
		Procedures:        []string{"iv_fluids", "blood_tests", "platelet_monitoring"},
		Medications:       []string{"paracetamol"},
		RoomType:          "general",
		TotalClaimAmount:  40000,
		RoomRent:          2000,
		PolicyPeriod:      "01-01-2024 to 31-12-2024",
		AdmissionDate:     "06-03-2024",
		DischargeDate:     "11-03-2024",
		PlanTier:          domain.PlanBasic,
	}
}

func TestAdjudicateEndpoint(t *testing.T) {
	server := createTestServer()

	t.Run("SuccessfulAdjudication", func(t *testing.T) {
		body, _ := json.Marshal(cleanClaimRequest())
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp domain.AdjudicationResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.AdjudicationID == "" {
			t.Error("expected adjudication_id in response")
		}
		if resp.ClaimID == "" {
			t.Error("expected claim_id in response")
		}
		if resp.Status != domain.StatusApproved {
			t.Errorf("expected status APPROVED, got %s", resp.Status)
		}
		if resp.ApprovedAmount != 36000 {
			t.Errorf("expected approved amount 36000, got %.2f", resp.ApprovedAmount)
		}
		if resp.FraudScore != 0 {
			t.Errorf("expected fraud score 0, got %.2f", resp.FraudScore)
		}
		if resp.Metadata.EngineVersion == "" {
			t.Error("expected engine_version in metadata")
		}
		if resp.Metadata.TraceID == "" {
			t.Error("expected trace_id in metadata")
		}
	})

	t.Run("ExpiredPolicyDenied", func(t *testing.T) {
		claim := cleanClaimRequest()
		claim.PolicyPeriod = "01-01-2023 to 31-12-2023"

		body, _ := json.Marshal(claim)
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp domain.AdjudicationResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}

		if resp.Status != domain.StatusDenied {
			t.Errorf("expected status DENIED, got %s", resp.Status)
		}
		if resp.ApprovedAmount != 0 {
			t.Errorf("expected approved amount 0, got %.2f", resp.ApprovedAmount)
		}
	})

	t.Run("MissingTenantID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		// No X-Tenant-ID header

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBufferString("not-json"))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("MissingPolicyNumber", func(t *testing.T) {
		claim := cleanClaimRequest()
		claim.PolicyNumber = ""

		body, _ := json.Marshal(claim)
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("MissingPatientName", func(t *testing.T) {
		claim := cleanClaimRequest()
		claim.PatientName = ""

		body, _ := json.Marshal(claim)
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		claim := cleanClaimRequest()
		claim.TotalClaimAmount = -100

		body, _ := json.Marshal(claim)
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rr.Code)
		}
	})

	t.Run("ResponseHeaders", func(t *testing.T) {
		body, _ := json.Marshal(cleanClaimRequest())
		req := httptest.NewRequest(http.MethodPost, "/adjudicate", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header in response")
		}
		if rr.Header().Get("X-Trace-ID") == "" {
			t.Error("expected X-Trace-ID header in response")
		}
		if rr.Header().Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type: application/json")
		}
	})
}

func TestDiseaseEndpoints(t *testing.T) {
	server := createTestServer()

	t.Run("ListDiseases", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/diseases", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Diseases []string `json:"diseases"`
			Count    int      `json:"count"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Count == 0 || len(resp.Diseases) != resp.Count {
			t.Errorf("expected non-empty disease list with matching count, got %d/%d",
				len(resp.Diseases), resp.Count)
		}
	})

	t.Run("GetDisease", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/diseases/dengue", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}

		var profile domain.DiseaseProfile
		if err := json.Unmarshal(rr.Body.Bytes(), &profile); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if profile.Name != "Dengue Fever" {
			t.Errorf("expected Dengue Fever profile, got %s", profile.Name)
		}
		if profile.MinDays <= 0 {
			t.Error("expected disease profile with typical stay range")
		}
	})

	t.Run("UnknownDisease", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/diseases/no-such-disease", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})
}

func TestRuleEndpoints(t *testing.T) {
	server := createTestServer()

	t.Run("ListRules", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rules", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}

		var resp struct {
			Count int `json:"count"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Count != 1 {
			t.Errorf("expected 1 loaded rule, got %d", resp.Count)
		}
	})

	t.Run("GetRule", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rules/test-rule-001", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
	})

	t.Run("GetRuleNotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rules/missing-rule", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rr.Code)
		}
	})

	t.Run("CreateRuleInvalidExpression", func(t *testing.T) {
		reqBody := CreateRuleRequest{
			ID:         "bad-rule",
			Name:       "Bad Rule",
			Expression: "this is not CEL ???",
			Weight:     0.5,
			Enabled:    true,
		}
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/rules", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}

func TestTypologyEndpoints(t *testing.T) {
	server := createTestServer()

	t.Run("CreateTypologyUnknownRule", func(t *testing.T) {
		reqBody := CreateTypologyRequest{
			ID:   "typ-001",
			Name: "Test Typology",
			Rules: []domain.TypologyRuleWeight{
				{RuleID: "no-such-rule", Weight: 1.0},
			},
			AlertThreshold: 0.5,
			Enabled:        true,
		}
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/typologies", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("CreateTypologyBadThreshold", func(t *testing.T) {
		reqBody := CreateTypologyRequest{
			ID:   "typ-002",
			Name: "Bad Threshold",
			Rules: []domain.TypologyRuleWeight{
				{RuleID: "test-rule-001", Weight: 1.0},
			},
			AlertThreshold: 0,
			Enabled:        true,
		}
		body, _ := json.Marshal(reqBody)
		req := httptest.NewRequest(http.MethodPost, "/typologies", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("ListTypologiesEmpty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/typologies", nil)
		req.Header.Set("X-Tenant-ID", "tenant-001")

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
	})
}

func TestHealthEndpoint(t *testing.T) {
	server := createTestServer()

	t.Run("HealthCheck", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}

		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)

		if resp["status"] != "healthy" {
			t.Errorf("expected status 'healthy', got '%s'", resp["status"])
		}
		if resp["version"] != "test-v1" {
			t.Errorf("expected version 'test-v1', got '%s'", resp["version"])
		}
	})

	t.Run("ReadyCheck", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ready", nil)

		rr := httptest.NewRecorder()
		server.Router().ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rr.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("TenantMiddlewareExtractsID", func(t *testing.T) {
		var capturedTenantID string

		handler := TenantMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			capturedTenantID = GetTenantID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "my-tenant-123")

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if capturedTenantID != "my-tenant-123" {
			t.Errorf("expected tenant ID 'my-tenant-123', got '%s'", capturedTenantID)
		}
	})

	t.Run("TracingMiddlewareSetsRequestID", func(t *testing.T) {
		var capturedRequestID string

		handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v, ok := r.Context().Value(RequestIDKey).(string); ok {
				capturedRequestID = v
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if capturedRequestID == "" {
			t.Error("expected request ID to be set")
		}

		if rr.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID response header")
		}
	})

	t.Run("RecoverMiddlewareHandlesPanic", func(t *testing.T) {
		handler := RecoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("test panic")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		// Should not panic
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rr.Code)
		}
	})
}
