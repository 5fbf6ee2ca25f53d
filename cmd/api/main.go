// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis_rate/v10"

	"github.com/carterperez-dev/templates/roster-api/internal/access"
	"github.com/carterperez-dev/templates/roster-api/internal/admin"
	"github.com/carterperez-dev/templates/roster-api/internal/auth"
	"github.com/carterperez-dev/templates/roster-api/internal/catalog"
	"github.com/carterperez-dev/templates/roster-api/internal/config"
	"github.com/carterperez-dev/templates/roster-api/internal/core"
	"github.com/carterperez-dev/templates/roster-api/internal/health"
	"github.com/carterperez-dev/templates/roster-api/internal/mail"
	"github.com/carterperez-dev/templates/roster-api/internal/middleware"
	"github.com/carterperez-dev/templates/roster-api/internal/migrations"
	"github.com/carterperez-dev/templates/roster-api/internal/server"
	"github.com/carterperez-dev/templates/roster-api/internal/storage"
	"github.com/carterperez-dev/templates/roster-api/internal/user"
)

const (
	drainDelay     = 5 * time.Second
	purgeInterval  = time.Hour
	refreshRetain  = 24 * time.Hour
	metricsPrefix  = "roster"
	purgeOpTimeout = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	genKeys := flag.Bool("genkeys", false, "write a fresh ES256 key pair and exit")
	flag.Parse()

	if *genKeys {
		if err := generateKeys(*configPath); err != nil {
			slog.Error("key generation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func generateKeys(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}

	slog.Info("key pair written",
		"private", cfg.JWT.PrivateKeyPath,
		"public", cfg.JWT.PublicKeyPath,
	)
	return nil
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := core.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeWith(logger, "database", db.Close)
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.MigrateOnStart {
		if err := migrations.Up(db.DB.DB); err != nil {
			return err
		}
		version, dirty, err := migrations.Version(db.DB.DB)
		if err != nil {
			return err
		}
		logger.Info("schema migrated", "version", version, "dirty", dirty)
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeWith(logger, "redis", redis.Close)
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	objects, err := storage.NewMinioStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("object storage ready",
		"endpoint", cfg.Storage.Endpoint,
		"bucket", cfg.Storage.Bucket,
	)

	if cfg.IsDevelopment() {
		if err := ensureDevKeys(cfg.JWT, logger); err != nil {
			return err
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}

	metrics := core.NewMetrics(metricsPrefix)
	urlFor := cfg.Storage.ObjectURL

	mailSvc := mail.NewService(
		mail.NewRepository(db.DB),
		mail.NewSMTPSender(cfg.Mail),
		cfg.App.BaseURL,
		logger,
	)

	accessSvc := access.NewService(access.NewRepository(db.DB), logger)

	userSvc := user.NewService(user.NewRepository(db.DB), mailSvc, objects, logger)
	userHandler := user.NewHandler(userSvc, urlFor)

	authSvc := auth.NewService(
		auth.NewStore(db.DB),
		jwtManager,
		userSvc,
		core.NewTokenBlacklist(redis.Client),
		mailSvc,
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	accessHandler := access.NewHandler(accessSvc, userSvc)

	catalogSvc := catalog.NewService(
		catalog.NewRepository(db.DB),
		accessSvc,
		objects,
		metrics,
		logger,
	)
	catalogHandler := catalog.NewHandler(catalogSvc, urlFor)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Repo:        admin.NewRepository(db.DB),
		DBStats:     db.Stats,
		RedisStats:  redis.PoolStats,
		DBPing:      db.Ping,
		RedisPing:   redis.Ping,
		StoragePing: objects.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		Middleware: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.Logger(logger),
			middleware.SecurityHeaders(cfg.IsProduction()),
			middleware.CORS(cfg.CORS),
			middleware.Metrics(metrics),
		},
	})

	router := srv.Router()

	router.Handle("/metrics", metrics.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	adminOnly := middleware.RequireAdmin

	levelLimiter := middleware.LevelRateLimiter(redis.Client, middleware.DefaultLevelTiers)
	authenticated := func(next http.Handler) http.Handler {
		return authenticator(levelLimiter(next))
	}

	credentialLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: redis_rate.Limit{
			Rate:   cfg.RateLimit.Requests,
			Burst:  cfg.RateLimit.Burst,
			Period: cfg.RateLimit.Window,
		},
		KeyFunc:  middleware.KeyByIP,
		FailOpen: true,
	})

	catalogLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.CatalogRequests,
			cfg.RateLimit.CatalogBurst,
		),
		KeyFunc:  middleware.KeyByUser,
		FailOpen: true,
	})
	optionalAuth := middleware.OptionalAuth(authSvc)
	catalogGuard := func(next http.Handler) http.Handler {
		return optionalAuth(catalogLimiter.Handler(next))
	}

	mailLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerHour(
			cfg.RateLimit.MailRequests,
			cfg.RateLimit.MailBurst,
		),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	})

	authHandler.RegisterRoutes(router, authenticated, credentialLimiter.Handler)
	userHandler.RegisterRoutes(router, authenticated, mailLimiter.Handler)
	accessHandler.RegisterRoutes(router, authenticated)
	catalogHandler.RegisterRoutes(router, catalogGuard)

	userHandler.RegisterAdminRoutes(router, authenticator, adminOnly)
	accessHandler.RegisterAdminRoutes(router, authenticator, adminOnly)
	catalogHandler.RegisterAdminRoutes(router, authenticator, adminOnly)
	adminHandler.RegisterRoutes(router, authenticator, adminOnly)

	go purgeRefreshTokens(ctx, authSvc, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

// purgeRefreshTokens deletes long-expired refresh tokens until ctx ends.
func purgeRefreshTokens(ctx context.Context, svc *auth.Service, logger *slog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(ctx, purgeOpTimeout)
			n, err := svc.PurgeExpired(opCtx, refreshRetain)
			cancel()
			if err != nil {
				logger.Error("refresh token purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired refresh tokens", "count", n)
			}
		}
	}
}

// ensureDevKeys writes a signing key pair on first start in development so
// a fresh checkout runs without -genkeys.
func ensureDevKeys(cfg config.JWTConfig, logger *slog.Logger) error {
	_, err := os.Stat(cfg.PrivateKeyPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.PrivateKeyPath), 0o700); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.PublicKeyPath), 0o755); err != nil {
		return err
	}
	if err := auth.GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
		return err
	}

	logger.Warn("generated development signing keys",
		"private", cfg.PrivateKeyPath,
		"public", cfg.PublicKeyPath,
	)
	return nil
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}
