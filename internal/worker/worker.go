// Package worker provides async claim processing for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/pipeline"
)

// Worker processes claims asynchronously from the EventBus.
type Worker struct {
	bus         domain.EventBus
	repo        domain.Repository
	cache       domain.Cache
	adjudicator *pipeline.Adjudicator

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process (empty = all via wildcard if supported)
	TenantIDs []string

	// WorkerCount is the number of concurrent workers per tenant
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, cache domain.Cache, adjudicator *pipeline.Adjudicator) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:         bus,
		repo:        repo,
		cache:       cache,
		adjudicator: adjudicator,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins processing claims for the given tenants.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.TenantIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all tenants (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	// Subscribe using a special "global" tenant ID
	// In production, you'd want to subscribe with wildcards or JetStream
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicClaimReceived, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startTenantWorker starts workers for a specific tenant.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicClaimReceived, func(ctx context.Context, msg *domain.Message) error {
		return w.processClaim(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicClaimReceived,
	)

	return nil
}

// handleMessage handles messages from global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processClaim(ctx, msg.TenantID, msg)
}

// ClaimMessage is the message payload for claim intake.
type ClaimMessage struct {
	ClaimID        string               `json:"claimId,omitempty"`
	TenantID       string               `json:"tenantId"`
	TraceID        string               `json:"traceId,omitempty"`
	Claim          *domain.ClaimRequest `json:"claim"`
	VelocityWindow int                  `json:"velocityWindow,omitempty"`
}

// processClaim adjudicates a claim through the pipeline.
func (w *Worker) processClaim(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	var claimMsg ClaimMessage
	if err := json.Unmarshal(msg.Payload, &claimMsg); err != nil {
		slog.Error("failed to parse claim message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}
	if claimMsg.Claim == nil {
		slog.Error("claim message missing claim body", "message_id", msg.ID)
		return nil
	}

	// Use message tenant if provided
	if claimMsg.TenantID != "" {
		tenantID = claimMsg.TenantID
	}

	traceID := claimMsg.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	claimID := claimMsg.ClaimID
	if claimID == "" {
		claimID = uuid.New().String()
	}
	claim := claimMsg.Claim.ToClaim(claimID, tenantID)

	slog.Debug("processing claim",
		"claim_id", claim.ClaimID,
		"tenant_id", tenantID,
		"trace_id", traceID,
	)

	// 1. Persist the intake record
	if w.repo != nil {
		if err := w.repo.SaveClaim(ctx, tenantID, claim); err != nil {
			slog.Error("failed to save claim",
				"claim_id", claim.ClaimID,
				"error", err,
			)
		}
	}

	// 2. Adjudicate
	adj := w.adjudicator.Adjudicate(ctx, &pipeline.Input{
		TenantID:       tenantID,
		Claim:          claim,
		TraceID:        traceID,
		VelocityWindow: claimMsg.VelocityWindow,
		StartTime:      start,
	})

	// 3. Save adjudication
	if w.repo != nil {
		if err := w.repo.SaveAdjudication(ctx, tenantID, adj); err != nil {
			slog.Error("failed to save adjudication",
				"claim_id", claim.ClaimID,
				"error", err,
			)
		}
	}

	// 4. Cache the summary for fast lookups
	if w.cache != nil {
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
		if err := w.cache.SetClaimSummary(ctx, tenantID, claim.ClaimID, summary, 10*time.Minute); err != nil {
			slog.Error("failed to cache claim summary",
				"claim_id", claim.ClaimID,
				"error", err,
			)
		}
	}

	// 5. Publish the adjudicated result
	resultPayload, _ := json.Marshal(adj)
	if err := w.bus.Publish(ctx, tenantID, domain.TopicClaimAdjudicated, resultPayload); err != nil {
		slog.Error("failed to publish adjudication",
			"claim_id", claim.ClaimID,
			"error", err,
		)
	}

	// 6. If the claim warrants attention, publish to the alert topic
	if pipeline.ShouldAlert(adj) {
		if err := w.bus.Publish(ctx, tenantID, domain.TopicClaimAlert, resultPayload); err != nil {
			slog.Error("failed to publish alert",
				"claim_id", claim.ClaimID,
				"error", err,
			)
		}
	}

	slog.Info("claim processed",
		"claim_id", claim.ClaimID,
		"tenant_id", tenantID,
		"status", adj.Final.Status,
		"fraud_score", adj.FraudScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
