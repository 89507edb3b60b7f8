// Command citymesh runs the decision agent: the HTTP decision API, the A2A
// receive endpoint, the websocket decision stream, and the optional MCP
// surface, all backed by the orchestrator and decision engine.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/CityMesh/internal/adapter/agenthttp"
	cmhttp "github.com/Strob0t/CityMesh/internal/adapter/http"
	"github.com/Strob0t/CityMesh/internal/adapter/mcp"
	"github.com/Strob0t/CityMesh/internal/adapter/memory"
	cmnats "github.com/Strob0t/CityMesh/internal/adapter/nats"
	cmotel "github.com/Strob0t/CityMesh/internal/adapter/otel"
	"github.com/Strob0t/CityMesh/internal/adapter/postgres"
	"github.com/Strob0t/CityMesh/internal/adapter/ristretto"
	"github.com/Strob0t/CityMesh/internal/adapter/ws"
	"github.com/Strob0t/CityMesh/internal/config"
	"github.com/Strob0t/CityMesh/internal/logger"
	"github.com/Strob0t/CityMesh/internal/middleware"
	"github.com/Strob0t/CityMesh/internal/port/cache"
	"github.com/Strob0t/CityMesh/internal/port/decisionlog"
	"github.com/Strob0t/CityMesh/internal/resilience"
	"github.com/Strob0t/CityMesh/internal/service"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"agents", len(cfg.Agents.Endpoints),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---

	shutdownOTel, err := cmotel.Setup(ctx, cfg.OTel, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	// --- Outbound agent communication ---

	comm, err := agenthttp.New(cfg.Agents)
	if err != nil {
		return fmt.Errorf("agent client: %w", err)
	}
	comm.SetBreakers(resilience.NewSet(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	// --- Decision history ---

	var history decisionlog.Log = memory.NewDecisionLog(cfg.History.MaxEntries)
	if cfg.Postgres.DSN != "" {
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		history = postgres.NewArchive(pool)
		slog.Info("decision archive enabled")
	}

	// --- Services ---

	orch := service.NewOrchestrator(comm)
	engine := service.NewEngine(orch, history)

	if cfg.NATS.URL != "" {
		queue, err := cmnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = queue.Close() }()
		engine.SetQueue(queue)
		slog.Info("decision events enabled", "url", cfg.NATS.URL)
	}

	hub := ws.NewHub()
	engine.SetNotifier(hub)

	metrics, err := cmotel.NewMetrics()
	if err != nil {
		slog.Warn("metrics disabled", "error", err)
	} else {
		engine.SetMetrics(metrics)
	}

	var statusCache cache.Cache
	if c, err := ristretto.New(cfg.Cache.MaxCostBytes); err != nil {
		slog.Warn("status cache disabled", "error", err)
	} else {
		defer c.Close()
		statusCache = c
	}
	statusSvc := service.NewStatusService(comm, history, statusCache, cfg.Cache.StatusTTL)

	// --- MCP ---

	mcpSrv := mcp.NewServer(
		mcp.ServerConfig{Addr: cfg.MCP.Addr, Name: cfg.Logging.Service, Version: version},
		mcp.ServerDeps{Decider: engine, Status: statusSvc, History: history},
	)
	if err := mcpSrv.Start(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mcpSrv.Stop(shutdownCtx); err != nil {
			slog.Warn("mcp shutdown", "error", err)
		}
	}()

	// --- HTTP ---

	handlers := cmhttp.NewHandlers(engine, statusSvc, history, version)
	handlers.SetWebSocket(http.HandlerFunc(hub.HandleWS))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(cmhttp.Logger)
	r.Use(cmhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cmotel.HTTPMiddleware(cfg.Logging.Service))
	cmhttp.MountRoutes(r, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
