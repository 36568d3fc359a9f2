package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openclaims/heron/internal/bus"
	"github.com/openclaims/heron/internal/cache"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/pipeline"
)

func cleanClaimRequest() *domain.ClaimRequest {
	return &domain.ClaimRequest{
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

func TestWorker(t *testing.T) {
	// Create channel bus
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	adjudicator := pipeline.New(knowledge.NewBase(), nil, nil, slog.Default())

	lruCache := cache.NewLRUCache(100)
	defer lruCache.Close()

	// Create worker
	worker := NewWorker(eventBus, nil, lruCache, adjudicator)

	t.Run("StartAndStop", func(t *testing.T) {
		cfg := Config{
			TenantIDs:   []string{"tenant-001"},
			WorkerCount: 1,
		}

		err := worker.Start(cfg)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		stats := worker.GetStats()
		if stats.SubscriptionCount != 1 {
			t.Errorf("expected 1 subscription, got %d", stats.SubscriptionCount)
		}

		err = worker.Stop()
		if err != nil {
			t.Errorf("Stop failed: %v", err)
		}

		stats = worker.GetStats()
		if stats.SubscriptionCount != 0 {
			t.Errorf("expected 0 subscriptions after stop, got %d", stats.SubscriptionCount)
		}
	})

	t.Run("ProcessClaim", func(t *testing.T) {
		// Create fresh worker for this test
		w := NewWorker(eventBus, nil, lruCache, adjudicator)

		cfg := Config{
			TenantIDs: []string{"tenant-test"},
		}
		w.Start(cfg)
		defer w.Stop()

		// Track adjudication results
		var resultReceived atomic.Bool
		var resultPayload []byte

		eventBus.Subscribe(context.Background(), "tenant-test", domain.TopicClaimAdjudicated, func(ctx context.Context, msg *domain.Message) error {
			resultPayload = msg.Payload
			resultReceived.Store(true)
			return nil
		})

		// Allow subscriptions to be active
		time.Sleep(50 * time.Millisecond)

		claimMsg := ClaimMessage{
			ClaimID:  "clm-001",
			TenantID: "tenant-test",
			TraceID:  "trace-001",
			Claim:    cleanClaimRequest(),
		}

		payload, _ := json.Marshal(claimMsg)
		err := eventBus.Publish(context.Background(), "tenant-test", domain.TopicClaimReceived, payload)
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		// Wait for processing
		time.Sleep(100 * time.Millisecond)

		if !resultReceived.Load() {
			t.Fatal("expected adjudication to be published")
		}

		var adj domain.Adjudication
		if err := json.Unmarshal(resultPayload, &adj); err != nil {
			t.Fatalf("failed to parse adjudication: %v", err)
		}

		if adj.ClaimID != "clm-001" {
			t.Errorf("expected claimID 'clm-001', got '%s'", adj.ClaimID)
		}
		if adj.TenantID != "tenant-test" {
			t.Errorf("expected tenantID 'tenant-test', got '%s'", adj.TenantID)
		}
		if adj.Metadata.TraceID != "trace-001" {
			t.Errorf("expected traceID 'trace-001', got '%s'", adj.Metadata.TraceID)
		}
		if adj.Final.Status != domain.StatusApproved {
			t.Errorf("expected APPROVED for clean claim, got '%s'", adj.Final.Status)
		}

		// Summary should be cached
		summary, err := lruCache.GetClaimSummary(context.Background(), "tenant-test", "clm-001")
		if err != nil {
			t.Fatalf("GetClaimSummary failed: %v", err)
		}
		if summary == nil {
			t.Fatal("expected cached claim summary")
		}
		if summary.Status != domain.StatusApproved {
			t.Errorf("expected cached status APPROVED, got '%s'", summary.Status)
		}
	})

	t.Run("AlertPublished", func(t *testing.T) {
		w := NewWorker(eventBus, nil, lruCache, adjudicator)

		cfg := Config{
			TenantIDs: []string{"tenant-alert"},
		}
		w.Start(cfg)
		defer w.Stop()

		// Track alerts
		var alertReceived atomic.Bool

		eventBus.Subscribe(context.Background(), "tenant-alert", domain.TopicClaimAlert, func(ctx context.Context, msg *domain.Message) error {
			alertReceived.Store(true)
			return nil
		})

		time.Sleep(50 * time.Millisecond)

		// Expired policy period forces a denial, which always alerts
		req := cleanClaimRequest()
		req.PolicyPeriod = "01-01-2023 to 31-12-2023"

		claimMsg := ClaimMessage{
			ClaimID:  "clm-alert",
			TenantID: "tenant-alert",
			Claim:    req,
		}

		payload, _ := json.Marshal(claimMsg)
		eventBus.Publish(context.Background(), "tenant-alert", domain.TopicClaimReceived, payload)

		time.Sleep(100 * time.Millisecond)

		if !alertReceived.Load() {
			t.Error("expected alert to be published for denied claim")
		}
	})

	t.Run("MultiTenant", func(t *testing.T) {
		w := NewWorker(eventBus, nil, lruCache, adjudicator)

		cfg := Config{
			TenantIDs: []string{"tenant-a", "tenant-b"},
		}
		w.Start(cfg)
		defer w.Stop()

		stats := w.GetStats()
		if stats.SubscriptionCount != 2 {
			t.Errorf("expected 2 subscriptions for 2 tenants, got %d", stats.SubscriptionCount)
		}
	})
}

func TestClaimMessageParsing(t *testing.T) {
	msg := ClaimMessage{
		ClaimID:        "clm-123",
		TenantID:       "tenant-001",
		TraceID:        "trace-456",
		Claim:          cleanClaimRequest(),
		VelocityWindow: 7200,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var parsed ClaimMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if parsed.ClaimID != msg.ClaimID {
		t.Errorf("expected ClaimID '%s', got '%s'", msg.ClaimID, parsed.ClaimID)
	}
	if parsed.Claim == nil || parsed.Claim.Diagnosis != "Dengue Fever" {
		t.Error("expected claim body to round-trip")
	}
	if parsed.VelocityWindow != msg.VelocityWindow {
		t.Errorf("expected VelocityWindow %d, got %d", msg.VelocityWindow, parsed.VelocityWindow)
	}
}
