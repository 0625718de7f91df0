package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrkey/internal/domain/audit"
	"hrkey/internal/domain/auth"
	"hrkey/internal/domain/criteria"
	"hrkey/internal/domain/employees"
	"hrkey/internal/domain/evaluations"
	"hrkey/internal/domain/reports"
	"hrkey/internal/domain/rounds"
	"hrkey/internal/domain/scoring"
	"hrkey/internal/platform/cache"
	"hrkey/internal/platform/config"
	"hrkey/internal/platform/db"
	"hrkey/internal/platform/jobs"
	"hrkey/internal/platform/metrics"
	audithandler "hrkey/internal/transport/http/handlers/audit"
	authhandler "hrkey/internal/transport/http/handlers/auth"
	criteriahandler "hrkey/internal/transport/http/handlers/criteria"
	employeeshandler "hrkey/internal/transport/http/handlers/employees"
	evaluationshandler "hrkey/internal/transport/http/handlers/evaluations"
	reportshandler "hrkey/internal/transport/http/handlers/reports"
	roundshandler "hrkey/internal/transport/http/handlers/rounds"
	"hrkey/internal/transport/http/middleware"
	"hrkey/internal/transport/http/shared"
)

// Services is the wired domain layer shared by the HTTP server and the CLI.
type Services struct {
	Auth        *auth.Service
	Audit       *audit.Service
	Employees   *employees.Service
	Criteria    *criteria.Service
	Rounds      *rounds.Service
	Evaluations *evaluations.Service
	Reports     *reports.Service
	Jobs        *jobs.Service
	Idempotency *middleware.IdempotencyStore
}

func NewServices(cfg config.Config, pool *pgxpool.Pool, reportCache *cache.Client, m *metrics.Collector) *Services {
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL, cfg.ManagerLinkSecret, cfg.ManagerLinkTTL, cfg.PublicBaseURL)
	employeesSvc := employees.NewService(employees.NewStore(pool), reportCache)
	criteriaSvc := criteria.NewService(criteria.NewStore(pool))
	roundsSvc := rounds.NewService(rounds.NewStore(pool), reportCache, cfg.DefaultPeriod)
	evaluationsSvc := evaluations.NewService(
		evaluations.NewStore(pool),
		criteriaSvc,
		roundsSvc,
		employeesSvc,
		reportCache,
		m,
		cfg.AdminWindowCode,
		cfg.DefaultEvaluationYear,
	)
	reportsSvc := reports.NewService(reports.NewStore(pool), roundsSvc, reportCache, m, reports.Settings{
		Thresholds:    scoring.Thresholds{PDI: cfg.PDIThreshold, Recognition: cfg.RecognitionThreshold},
		DefaultRegion: cfg.DefaultSalaryRegion,
		DefaultYear:   cfg.DefaultSalaryYear,
	})
	return &Services{
		Auth:        authSvc,
		Audit:       audit.New(pool),
		Employees:   employeesSvc,
		Criteria:    criteriaSvc,
		Rounds:      roundsSvc,
		Evaluations: evaluationsSvc,
		Reports:     reportsSvc,
		Jobs:        jobs.New(pool, m),
		Idempotency: middleware.NewIdempotencyStore(pool),
	}
}

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Cache    *cache.Client
	Metrics  *metrics.Collector
	Services *Services
	Router   http.Handler
}

// New connects to Postgres and Redis, applies migrations and seed data
// when enabled, and builds the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
		slog.Info("migrations applied", "count", len(applied))
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	reportCache, err := cache.Connect(ctx, cfg.RedisURL, cfg.ReportCacheTTL)
	if err != nil {
		slog.Warn("report cache disabled", "err", err)
		reportCache = nil
	}

	var m *metrics.Collector
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	app := &App{
		Config:   cfg,
		DB:       pool,
		Cache:    reportCache,
		Metrics:  m,
		Services: NewServices(cfg, pool, reportCache, m),
	}
	app.Router = app.routes()
	return app, nil
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		slog.Warn("cache close failed", "err", err)
	}
	a.DB.Close()
}

func (a *App) routes() http.Handler {
	cfg := a.Config
	svc := a.Services

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{shared.TotalCountHeader, middleware.ReplayedHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(chimw.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Auth(cfg.JWTSecret, svc.Auth))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Metrics != nil {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	authHandler := authhandler.NewHandler(svc.Auth, svc.Audit, svc.Auth, cfg.IsProduction())
	authHandler.RegisterPublicRoutes(router)

	criteriaHandler := criteriahandler.NewHandler(svc.Criteria, svc.Audit, svc.Auth)
	if cfg.RecomputeOnWeights {
		criteriaHandler.Jobs = svc.Jobs
		criteriaHandler.Recompute = func(ctx context.Context) (any, error) {
			return svc.Evaluations.Recompute(ctx, "")
		}
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		employeeshandler.NewHandler(svc.Employees, svc.Audit, svc.Auth).RegisterRoutes(r)
		criteriaHandler.RegisterRoutes(r)
		roundshandler.NewHandler(svc.Rounds, svc.Audit, svc.Auth).RegisterRoutes(r)
		evaluationshandler.NewHandler(svc.Evaluations, svc.Audit, svc.Jobs, svc.Idempotency, svc.Auth).RegisterRoutes(r)
		reportshandler.NewHandler(svc.Reports, svc.Auth).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit, svc.Jobs, svc.Auth).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests and
// stops the job worker.
func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	app.Services.Jobs.Start(workerCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrkey server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorker()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown failed", "err", err)
	}
	stopWorker()
	<-app.Services.Jobs.Done()
	return nil
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, filepath.Clean("/"+r.URL.Path))
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		index := filepath.Join(h.staticPath, h.indexPath)
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
		return
	}

	http.NotFound(w, r)
}
