// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/itinera/internal/api"
	"github.com/starford/itinera/internal/generator"
	"github.com/starford/itinera/internal/mcpserver"
	"github.com/starford/itinera/internal/metrics"
	"github.com/starford/itinera/internal/planner"
	"github.com/starford/itinera/internal/sse"
	"github.com/starford/itinera/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs move to stderr.
	out := app.stdout
	if out == nil {
		out = os.Stdout
		if app.mcp {
			out = os.Stderr
		}
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("provider", cfg.Generation.Provider),
		slog.Bool("fencing", cfg.Generation.Fencing),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize slot storage.
	slots, fsStore, closeSlots, err := openSlots(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeSlots()

	// Generation provider and place lookups.
	provider, places := newProvider(cfg.Generation)

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.MapThrottle)
	defer broker.Close()

	m := metrics.New()
	mirror, _ := provider.(planner.Mirror)
	svc := planner.New(planner.Options{
		Provider: provider,
		Slots:    slots,
		Logger:   logger,
		Metrics:  m,
		Notify:   broker.PublishItineraryEvent,
		Mirror:   mirror,
		Fencing:  cfg.Generation.Fencing,
		Timeout:  cfg.Generation.Timeout,
	})

	if app.mcp {
		logger.Info("Serving MCP on stdio")
		return mcpserver.New(svc, slots).ServeStdio()
	}

	apiRouter := api.NewRouter(svc, places, api.Options{
		AuthEnabled:   cfg.Auth.AuthEnabled(),
		Token:         cfg.Auth.Token,
		Events:        broker,
		GenerateLimit: cfg.Generation.RateLimit,
		GenerateBurst: cfg.Generation.Burst,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.App.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "If-Match"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
	}).Handler)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", readyHandler(slots))
	r.Handle("/metrics", m.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the slot directory so other tabs learn about external saves.
	if fsStore != nil {
		g.Go(func() error {
			if err := storage.Watch(gCtx, fsStore, logger, broker.PublishSlotEvent); err != nil {
				logger.Warn("slot watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// openSlots opens the configured slot store. fs is non-nil only for the
// file driver, which is the one that can be watched.
func openSlots(cfg StorageConfig) (storage.Slots, *storage.FS, func(), error) {
	switch cfg.Driver {
	case StorageFS:
		if err := os.MkdirAll(cfg.FS.Path, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("create storage dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.FS.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init storage: %w", err)
		}
		return fs, fs, func() {}, nil
	default:
		db, err := storage.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init storage: %w", err)
		}
		return db, nil, func() { _ = db.Close() }, nil
	}
}

// newProvider builds the generator and place lookup for cfg.
func newProvider(cfg GenerationConfig) (generator.Provider, generator.Places) {
	if cfg.Provider == ProviderHTTP {
		c := generator.NewClient(cfg.BaseURL, nil, cfg.CacheTTL)
		return c, c
	}
	mock := generator.NewMock(cfg.Mock.MinDelay, cfg.Mock.MaxDelay)
	return mock, mock
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readyHandler reports 503 while the slot store is unreachable.
func readyHandler(slots storage.Slots) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p, ok := slots.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
