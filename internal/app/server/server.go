package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/domain/attendance"
	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/core"
	"hrdesk/internal/domain/leave"
	"hrdesk/internal/domain/payroll"
	"hrdesk/internal/domain/performance"
	"hrdesk/internal/domain/reports"
	"hrdesk/internal/platform/config"
	"hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/db"
	"hrdesk/internal/platform/geo"
	"hrdesk/internal/platform/jobs"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	attendancehandler "hrdesk/internal/transport/http/handlers/attendance"
	audithandler "hrdesk/internal/transport/http/handlers/audit"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	corehandler "hrdesk/internal/transport/http/handlers/core"
	leavehandler "hrdesk/internal/transport/http/handlers/leave"
	payrollhandler "hrdesk/internal/transport/http/handlers/payroll"
	performancehandler "hrdesk/internal/transport/http/handlers/performance"
	reportshandler "hrdesk/internal/transport/http/handlers/reports"
	"hrdesk/internal/transport/http/middleware"
)

// Services holds the domain services behind the HTTP API.
type Services struct {
	Auth        *auth.Service
	Core        *core.Service
	Attendance  *attendance.Service
	Leave       *leave.Service
	Payroll     *payroll.Service
	Performance *performance.Service
	Reports     *reports.Service
	Audit       *audit.Service
	Jobs        *jobs.Service
	Metrics     *metrics.Collector
}

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Services Services
	Router   http.Handler
}

// NewServices builds every domain service over one pool.
func NewServices(cfg config.Config, pool *pgxpool.Pool) (Services, error) {
	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return Services{}, err
	}
	collector := metrics.New()
	jobsSvc := jobs.New(jobs.PGRuns{DB: pool}, 0)

	coreSvc := core.NewService(core.NewStore(pool, sealer), cfg.CompanyName)
	attendanceSvc := attendance.NewService(
		attendance.NewStore(pool),
		geo.New(cfg.GeoLookupURL, cfg.GeoLookupTimeout, cfg.GeoLookupEnabled),
		sealer,
		time.Local,
	)
	payrollSvc := payroll.NewService(payroll.NewStore(pool), coreSvc, nil, jobsSvc)
	if cfg.CompanyName != "" {
		payrollSvc.Company = cfg.CompanyName
	}
	payrollSvc.PayslipDir = cfg.PayslipDir
	payrollSvc.Crypto = sealer

	auditSvc := audit.New(pool)
	auditSvc.Metrics = collector

	return Services{
		Auth:        auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Core:        coreSvc,
		Attendance:  attendanceSvc,
		Leave:       leave.NewService(leave.NewStore(pool), attendanceSvc),
		Payroll:     payrollSvc,
		Performance: performance.NewService(performance.NewStore(pool)),
		Reports:     reports.NewService(reports.NewStore(pool), time.Local),
		Audit:       auditSvc,
		Jobs:        jobsSvc,
		Metrics:     collector,
	}, nil
}

// NewRouter mounts health, metrics and the /api/v1 surface.
func NewRouter(cfg config.Config, svc Services, ping func(context.Context) error) http.Handler {
	perms := auth.StaticPermissions{}
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(slog.String("app", "hrdesk"), slog.String("env", cfg.Environment))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	router.Use(chimw.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if cfg.MetricsEnabled {
		router.Use(svc.Metrics.Middleware)
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authhandler.NewHandler(svc.Auth, svc.Audit).RegisterRoutes(r)
		corehandler.NewHandler(svc.Core, perms, svc.Audit).RegisterRoutes(r)
		attendancehandler.NewHandler(svc.Attendance, perms, svc.Audit).RegisterRoutes(r)
		leavehandler.NewHandler(svc.Leave, perms, svc.Audit).RegisterRoutes(r)
		payrollhandler.NewHandler(svc.Payroll, perms, svc.Audit).RegisterRoutes(r)
		performancehandler.NewHandler(svc.Performance, perms, svc.Audit).RegisterRoutes(r)
		reportshandler.NewHandler(svc.Reports, perms).RegisterRoutes(r)
		audithandler.NewHandler(svc.Audit, perms).RegisterRoutes(r)
	})

	return router
}

// New connects, prepares the schema per cfg, and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := Prepare(ctx, cfg, pool); err != nil {
		pool.Close()
		return nil, err
	}
	svc, err := NewServices(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &App{
		Config:   cfg,
		DB:       pool,
		Services: svc,
		Router:   NewRouter(cfg, svc, pool.Ping),
	}, nil
}

// Prepare runs migrations and the administrator seed when enabled.
func Prepare(ctx context.Context, cfg config.Config, pool *pgxpool.Pool) error {
	if cfg.RunMigrations {
		applied, err := db.Migrate(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("migrations applied", "count", applied)
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// Run serves until ctx is cancelled, then drains the job worker.
func (a *App) Run(ctx context.Context) error {
	jobCtx, stopJobs := context.WithCancel(context.Background())
	a.Services.Jobs.Start(jobCtx)

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("hrdesk listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = srv.Shutdown(shutdownCtx)
		cancel()
	}
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), 30*time.Second)
	if drainErr := a.Services.Jobs.Drain(drainCtx); drainErr != nil {
		slog.Warn("job queue not drained before shutdown", "err", drainErr)
	}
	cancelDrain()
	stopJobs()
	a.Services.Jobs.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Close() {
	a.DB.Close()
}
