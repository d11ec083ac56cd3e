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
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/verseclock/internal/api"
	"github.com/starford/verseclock/internal/clockservice"
	"github.com/starford/verseclock/internal/devotional"
	"github.com/starford/verseclock/internal/favorites"
	"github.com/starford/verseclock/internal/mcpserver"
	"github.com/starford/verseclock/internal/sse"
	"github.com/starford/verseclock/internal/storage"
	"github.com/starford/verseclock/internal/userstate"
	"github.com/starford/verseclock/internal/verses"
)

// Version is reported by the MCP server and the CLI.
var Version = "dev"

// App holds the components shared by every command.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Table   *verses.Table
	Service *clockservice.Service

	store *storage.SQLite
}

// New loads the verse table, opens the store and wires the service.
// Callers must Close the returned App.
func New(opts ...Option) (*App, error) {
	app := &application{logOutput: os.Stdout, now: time.Now}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	table, err := verses.Load(cfg.Verses.Path)
	if err != nil {
		return nil, fmt.Errorf("load verses: %w", err)
	}

	store, err := storage.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	gen, err := devotional.New()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init devotionals: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("verses_path", cfg.Verses.Path),
		slog.Int("verses", table.Len()),
		slog.String("verses_checksum", table.Checksum()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", loc.String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc := clockservice.NewService(
		verses.NewResolver(table),
		favorites.NewStore(store, app.now, logger),
		userstate.NewStore(store, func() time.Time { return app.now().In(loc) }),
		gen,
		clockservice.WithClock(app.now),
		clockservice.WithLocation(loc),
		clockservice.WithDurations(cfg.Display.Durations()),
		clockservice.WithLogger(logger),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Table:   table,
		Service: svc,
		store:   store,
	}, nil
}

// Close cancels pending display timers and closes the store.
func (a *App) Close() error {
	a.Service.Session().Close()
	return a.store.Close()
}

// Handler builds the HTTP handler: middleware, health checks and the API
// mounted at /api.
func (a *App) Handler(broker *sse.Broker) http.Handler {
	cfg := a.Config

	apiRouter := api.NewRouter(a.Service, broker, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := a.store.Ping(r.Context()); err != nil {
			a.Logger.Error("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","verses":%d,"checksum":%q}`, a.Table.Len(), a.Table.Checksum())
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := New(opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Config
	logger := app.Logger

	// SSE broker; display changes are pushed to every client.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()
	app.Service.Session().Subscribe(broker.PublishDisplay)
	broker.PublishDisplay(app.Service.Display())

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.Handler(broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the clock verse current.
	g.Go(func() error {
		return app.Service.Run(gCtx)
	})

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
		// Close streams first so Shutdown does not wait on open SSE clients.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the errgroup so the ticker goroutine exits with the
// server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools over stdio until stdin closes.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := New(append([]Option{WithLogOutput(os.Stderr)}, opts...)...)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Logger.Info("MCP server starting on stdio")
	return mcpserver.New(app.Service, Version).ServeStdio()
}
