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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/neomorfeo/venuedir/internal/adapter/auth"
	"github.com/neomorfeo/venuedir/internal/adapter/fsm"
	otelAdapter "github.com/neomorfeo/venuedir/internal/adapter/otel"
	riverAdapter "github.com/neomorfeo/venuedir/internal/adapter/river"
	"github.com/neomorfeo/venuedir/internal/adapter/sqlite"
	"github.com/neomorfeo/venuedir/internal/app"
	"github.com/neomorfeo/venuedir/internal/config"

	handler "github.com/neomorfeo/venuedir/internal/adapter/http"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---
	providers, err := otelAdapter.Setup(ctx, otelAdapter.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelAdapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	jobs, err := riverAdapter.Setup(ctx, db)
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := jobs.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := jobs.Stop(stopCtx); err != nil {
			slog.Error("river stop", "error", err)
		}
	}()

	publisher := otelAdapter.NewTracingPublisher(riverAdapter.NewPublisher(jobs))

	authn, err := auth.New(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// --- Application ---
	svc := app.NewService(app.Deps{
		Workers:      otelAdapter.NewTracingWorkers(store.Workers()),
		Venues:       otelAdapter.NewTracingVenues(store.Venues()),
		Associations: otelAdapter.NewTracingAssociations(store.Associations()),
		Proposals:    otelAdapter.NewTracingProposals(store.Proposals()),
		Queue:        otelAdapter.NewTracingQueue(store.Queue()),
		Access:       otelAdapter.NewTracingAccess(store.Owners()),
		Lifecycle:    fsm.NewLifecycle(),
		Review:       fsm.NewReview(),
		Notifier:     publisher,
		Points:       publisher,
		Logger:       slog.Default(),
	})

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(otelchi.Middleware("venuedir", otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(limiterhttp.NewMiddleware(limiter.New(memory.NewStore(), cfg.RateLimit)).Handler)
	router.Use(authn.Middleware)

	api := humachi.New(router, huma.DefaultConfig("venuedir", "0.1.0"))
	handler.Register(api, svc)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("venuedir listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("stopped")
	return nil
}
