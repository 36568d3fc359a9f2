// Heron - Health insurance claims adjudication engine.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openclaims/heron/internal/api"
	"github.com/openclaims/heron/internal/bus"
	"github.com/openclaims/heron/internal/cache"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/pipeline"
	"github.com/openclaims/heron/internal/repository"
	"github.com/openclaims/heron/internal/rules"
	"github.com/openclaims/heron/internal/velocity"
	"github.com/openclaims/heron/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("HERON_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Log startup
	slog.Info("starting heron",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("HERON_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	// Override adjudication mode via environment
	switch os.Getenv("HERON_MODE") {
	case "sync":
		cfg.Mode = domain.ModeSync
	case "async":
		cfg.Mode = domain.ModeAsync
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"mode", cfg.Mode,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize Disease Knowledge Base
	kb := knowledge.NewBase()
	slog.Info("disease knowledge base loaded", "diseases", len(kb.DiseaseNames()))

	// Initialize Velocity Service
	velocitySvc := velocity.NewService(repo, cacheImpl)
	slog.Info("velocity service initialized")

	// Initialize Rule Engine with velocity getter
	engine, err := rules.NewEngine(velocitySvc.GetVelocityGetter(), 100)
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}

	// Load rules from database (no hardcoded defaults - configure via API)
	if err := loadRulesFromDatabase(ctx, repo, engine); err != nil {
		slog.Error("failed to load rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize Typology Engine
	typologyEngine := rules.NewTypologyEngine()

	// Load typologies from database (no hardcoded defaults - configure via API)
	if err := loadTypologiesFromDatabase(ctx, repo, typologyEngine); err != nil {
		slog.Error("failed to load typologies", "error", err)
		os.Exit(1)
	}
	slog.Info("typology engine initialized", "typologies_count", typologyEngine.TypologyCount())

	// Initialize Adjudication Pipeline
	adjudicator := pipeline.New(kb, engine, typologyEngine, logger)
	slog.Info("adjudication pipeline initialized")

	// Initialize async Worker (async mode or Pro tier)
	var asyncWorker *worker.Worker
	if cfg.Mode == domain.ModeAsync || os.Getenv("HERON_ASYNC_WORKER") == "true" {
		asyncWorker = worker.NewWorker(busImpl, repo, cacheImpl, adjudicator)

		// Get tenant IDs to process (from environment or default)
		tenantIDs := []string{}
		if envTenants := os.Getenv("HERON_TENANTS"); envTenants != "" {
			tenantIDs = strings.Split(envTenants, ",")
		}

		workerCfg := worker.Config{
			TenantIDs:   tenantIDs,
			WorkerCount: 5,
		}

		if err := asyncWorker.Start(workerCfg); err != nil {
			slog.Error("failed to start async worker", "error", err)
		} else {
			slog.Info("async worker started", "tenant_count", len(tenantIDs))
		}
	}

	// Initialize Server
	srv := api.NewServer(cfg.Server, repo, cacheImpl, busImpl, engine, typologyEngine, adjudicator, kb, Version, cfg.Mode)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("heron is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop async worker first
	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("heron shutdown complete")
}

// GlobalTenantID is used for rules that apply to all tenants.
const GlobalTenantID = "*"

// loadRulesFromDatabase loads rules from the database into the engine.
// A fresh install with no tenant rules falls back to the builtin starter
// set; operators replace it via the rules API.
func loadRulesFromDatabase(ctx context.Context, repo domain.Repository, engine *rules.Engine) error {
	dbRules, err := repo.ListRuleConfigs(ctx, GlobalTenantID)
	if err != nil {
		slog.Warn("failed to list rules from database", "error", err)
		dbRules = nil
	}

	if len(dbRules) > 0 {
		slog.Info("loading rules from database", "count", len(dbRules))
		return engine.LoadRules(dbRules)
	}

	builtins := rules.BuiltinRules()
	slog.Info("no rules in database - loading builtin starter rules", "count", len(builtins))
	return engine.LoadRules(builtins)
}

// loadTypologiesFromDatabase loads typologies from the database into the engine.
// A fresh install with no tenant typologies falls back to the builtin set
// grouping the starter rules.
func loadTypologiesFromDatabase(ctx context.Context, repo domain.Repository, engine *rules.TypologyEngine) error {
	dbTypologies, err := repo.ListTypologies(ctx, GlobalTenantID)
	if err != nil {
		slog.Warn("failed to list typologies from database", "error", err)
		dbTypologies = nil
	}

	if len(dbTypologies) > 0 {
		slog.Info("loading typologies from database", "count", len(dbTypologies))
		engine.LoadTypologies(dbTypologies)
		return nil
	}

	builtins := rules.BuiltinTypologies()
	slog.Info("no typologies in database - loading builtin starter typologies", "count", len(builtins))
	engine.LoadTypologies(builtins)
	return nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ==============================================")
	fmt.Println("                    HERON")
	fmt.Println("        Claims Adjudication Engine")
	fmt.Println("  ==============================================")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Mode:     %s\n", cfg.Mode)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /adjudicate               - Adjudicate a claim")
	fmt.Println("    GET  /adjudications/{id}       - Get adjudication by ID")
	fmt.Println("    GET  /adjudications            - List by decision status")
	fmt.Println("    GET  /adjudications/high-risk  - List high fraud scores")
	fmt.Println("    GET  /claims/{id}              - Get claim by ID")
	fmt.Println("    GET  /claims/{id}/summary      - Cached claim summary")
	fmt.Println("    GET  /diseases                 - List known diagnoses")
	fmt.Println("    GET  /diseases/{name}          - Disease profile")
	fmt.Println("    GET  /rules                    - List all rules")
	fmt.Println("    POST /rules                    - Create a new rule")
	fmt.Println("    POST /rules/reload             - Hot-reload rules")
	fmt.Println("    GET  /typologies               - List all typologies")
	fmt.Println("    POST /typologies               - Create a new typology")
	fmt.Println("    PUT  /typologies/{id}          - Update a typology")
	fmt.Println("    DELETE /typologies/{id}        - Delete a typology")
	fmt.Println("    POST /typologies/reload        - Hot-reload typologies")
	fmt.Println("    GET  /health                   - Health check")
	fmt.Println()
}
