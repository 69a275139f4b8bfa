package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"staffhub/internal/domain/access"
	"staffhub/internal/domain/audit"
	"staffhub/internal/domain/users"
	"staffhub/internal/platform/config"
	"staffhub/internal/platform/db"
	"staffhub/internal/platform/jobs"
	"staffhub/internal/platform/metrics"
	accesshandler "staffhub/internal/transport/http/handlers/access"
	audithandler "staffhub/internal/transport/http/handlers/audit"
	authhandler "staffhub/internal/transport/http/handlers/auth"
	reportshandler "staffhub/internal/transport/http/handlers/reports"
	usershandler "staffhub/internal/transport/http/handlers/users"
	"staffhub/internal/transport/http/middleware"
)

const auditQueueSize = 256

// Deps are the collaborators the HTTP router is built from.
type Deps struct {
	Config      config.Config
	Table       *access.Table
	Users       *users.Service
	AuditWriter audit.Recorder
	AuditReader audit.Reader
	Metrics     *metrics.Collector
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Run loads configuration, connects to Postgres and serves until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	table, err := LoadTable(cfg)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	userService := users.NewService(users.NewStore(pool))
	if cfg.RunSeed {
		if err := db.Seed(ctx, userService, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	jobCtx, stopJobs := context.WithCancel(context.Background())
	jobService := jobs.New(auditQueueSize)
	jobService.Start(jobCtx)

	auditStore := audit.New(pool)
	if cfg.AuditRetention > 0 {
		jobService.Schedule(jobCtx, jobs.JobAuditPurge, cfg.AuditPurgeInterval, func(ctx context.Context) error {
			removed, err := auditStore.Purge(ctx, time.Now().Add(-cfg.AuditRetention))
			if err == nil && removed > 0 {
				slog.Info("audit events purged", "count", removed)
			}
			return err
		})
	}

	router := NewRouter(Deps{
		Config:      cfg,
		Table:       table,
		Users:       userService,
		AuditWriter: audit.NewAsync(auditStore, jobService, jobs.JobAuditRecord),
		AuditReader: auditStore,
		Metrics:     metrics.New(),
		Ready:       pool.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment, "permissions", len(table.Permissions()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		stopJobs()
		jobService.Wait()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	stopJobs()
	jobService.Wait()
	return err
}

// LoadTable returns the built-in permission table, with the overrides from
// ACCESS_POLICY_FILE applied when one is configured.
func LoadTable(cfg config.Config) (*access.Table, error) {
	base := access.DefaultTable()
	if cfg.AccessPolicyFile == "" {
		return base, nil
	}
	table, err := access.LoadPolicyFile(cfg.AccessPolicyFile, base)
	if err != nil {
		return nil, fmt.Errorf("access policy %s: %w", cfg.AccessPolicyFile, err)
	}
	slog.Info("access policy loaded", "file", cfg.AccessPolicyFile)
	return table, nil
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	var counter middleware.DecisionCounter
	if deps.Metrics != nil {
		counter = deps.Metrics
	}
	gate := middleware.NewGate(deps.Table, deps.AuditWriter, counter)
	if deps.Users != nil {
		gate.Accounts = deps.Users
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(deps.Metrics.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(deps.Users, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Post("/auth/refresh", authHandler.HandleRefresh)

		accesshandler.NewHandler(deps.Table).RegisterRoutes(r)
		usershandler.NewHandler(deps.Users, gate, deps.AuditWriter).RegisterRoutes(r)
		reportshandler.NewHandler(deps.Table, gate).RegisterRoutes(r)
		if deps.AuditReader != nil {
			audithandler.NewHandler(deps.AuditReader, gate).RegisterRoutes(r)
		}
	})

	return router
}
