package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airport-vms/config"
	"airport-vms/internal/adapter/events"
	httpHandler "airport-vms/internal/adapter/http/handler"
	"airport-vms/internal/adapter/http/middleware"
	"airport-vms/internal/adapter/mail"
	"airport-vms/internal/adapter/metrics"
	memStorage "airport-vms/internal/adapter/storage/memory"
	pgStorage "airport-vms/internal/adapter/storage/postgres"
	redisStorage "airport-vms/internal/adapter/storage/redis"
	"airport-vms/internal/core/ports"
	"airport-vms/internal/service"
	"airport-vms/pkg/logger"

	"github.com/rs/zerolog"
)

// stores bundles the repositories of the selected storage driver.
type stores struct {
	applications ports.ApplicationRepository
	vendors      ports.VendorRepository
	admins       ports.AdminRepository
	audit        ports.AuditRepository
	transactor   ports.DBTransactor
	health       ports.HealthChecker
	close        func()
}

func main() {
	if err := config.LoadDotEnv(os.Getenv("AVM_ENV_FILE")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(os.Getenv("AVM_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "jwt.secret (AVM_JWT_SECRET) is required")
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("Service stopped")
		os.Exit(1)
	}
}

// run wires the service and blocks until a shutdown signal or a fatal server error.
func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting Airport Vendor Management service")

	ctx := context.Background()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer st.close()

	healthCheckers := []ports.HealthChecker{st.health}

	// Redis is optional: without it reviews rely on the conditional update alone
	// and rate limiting is off.
	var (
		reviewLock     ports.ReviewLocker
		rateLimitStore middleware.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		reviewLock = redisStorage.NewReviewLock(rdb)
		if cfg.RateLimit.Enabled {
			rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		}
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	transport, err := mail.NewTransport(cfg.Mail, logger.Component(log, "mail"))
	if err != nil {
		return fmt.Errorf("initialize mail transport: %w", err)
	}

	publisher, err := events.New(cfg.Kafka, logger.Component(log, "events"))
	if err != nil {
		return fmt.Errorf("initialize event publisher: %w", err)
	}
	defer publisher.Close()

	m := metrics.New()

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	credentials, err := service.NewCredentialGenerator()
	if err != nil {
		return fmt.Errorf("initialize credential generator: %w", err)
	}

	// Initialize business services
	authSvc := service.NewAuthService(st.admins, st.vendors, hashSvc, tokenSvc, logger.Component(log, "auth"))
	appSvc := service.NewApplicationService(st.applications, publisher, m, logger.Component(log, "intake"))
	notifier := service.NewNotificationService(transport, service.NotificationConfig{
		From:    cfg.Mail.From,
		Timeout: cfg.Mail.Timeout,
	}, logger.Component(log, "notification"))
	reviewSvc := service.NewReviewService(service.ReviewServiceDeps{
		Applications: st.applications,
		Transactor:   st.transactor,
		Provisioner:  service.NewAccountProvisioner(st.vendors, hashSvc),
		Credentials:  credentials,
		Notifier:     notifier,
		Locker:       reviewLock,
		Events:       publisher,
		Metrics:      m,
		LockTTL:      cfg.Review.LockTTL,
		Log:          logger.Component(log, "review"),
	})
	auditSvc := service.NewAuditService(st.audit, logger.Component(log, "audit"))

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		admin, err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminName, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		log.Info().Str("admin_id", admin.ID.String()).Str("email", admin.Email).Msg("Admin account ready")
	} else {
		log.Warn().Msg("No bootstrap admin configured (auth.admin_email / auth.admin_password)")
	}

	// Load OpenAPI spec for Swagger UI
	specBytes, err := os.ReadFile(cfg.Server.SwaggerPath)
	if err == nil {
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AppSvc:         appSvc,
		ReviewSvc:      reviewSvc,
		AuthSvc:        authSvc,
		RateLimitStore: rateLimitStore,
		AuditSvc:       auditSvc,
		HealthCheckers: healthCheckers,
		Metrics:        m,
		SwaggerSpec:    specBytes,
		Mode:           cfg.Server.Mode,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		s := memStorage.New()
		return &stores{
			applications: s.Applications(),
			vendors:      s.Vendors(),
			admins:       s.Admins(),
			audit:        s.Audit(),
			transactor:   s.Transactor(),
			health:       s,
			close:        func() {},
		}, nil

	case "postgres", "":
		if cfg.Database.AutoMigrate {
			if err := pgStorage.MigrateUp(cfg.Database.MigrateURL(), log); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info().Msg("PostgreSQL connected")
		return &stores{
			applications: pgStorage.NewApplicationRepo(pool),
			vendors:      pgStorage.NewVendorRepo(pool),
			admins:       pgStorage.NewAdminRepo(pool),
			audit:        pgStorage.NewAuditRepo(pool),
			transactor:   pgStorage.NewTransactor(pool),
			health:       pgStorage.NewHealthCheck(pool),
			close:        pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
