// Package main is the entrypoint for the fintrack API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/fintrack/fintrack/internal/auth"
	"github.com/fintrack/fintrack/internal/cache"
	"github.com/fintrack/fintrack/internal/config"
	"github.com/fintrack/fintrack/internal/handler"
	"github.com/fintrack/fintrack/internal/handler/dto"
	"github.com/fintrack/fintrack/internal/metrics"
	"github.com/fintrack/fintrack/internal/middleware"
	"github.com/fintrack/fintrack/internal/repository"
	"github.com/fintrack/fintrack/internal/server"
	"github.com/fintrack/fintrack/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.MigrateOnStart {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Redis only backs login throttling; without it the API still runs.
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cache.Options{URL: cfg.RedisURL})
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, login throttling disabled")
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.GetTrustedProxies())
	if err != nil {
		logger.Error("invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}

	corsConfig := middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())
	if err := corsConfig.Validate(); err != nil {
		logger.Error("invalid CORS_ALLOWED_ORIGINS", "error", err)
		os.Exit(1)
	}

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	recorder := metrics.NewInMemory()

	accountService := service.NewAccountService(repo, tokens, recorder)
	transactionService := service.NewTransactionService(repo, recorder)
	reportService := service.NewReportService(repo, recorder)

	// Keep nil pointers out of interface values.
	var cacheChecker handler.HealthChecker
	rateLimit := middleware.RateLimitConfig{
		Logger:  logger,
		Enabled: cfg.LoginRateLimitEnabled,
		RPS:     float64(cfg.LoginRateLimitRPS),
		Burst:   cfg.LoginRateLimitBurst,
	}
	if cacheClient != nil {
		cacheChecker = cacheClient
		rateLimit.Limiter = cacheClient
	}

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(repo, cacheChecker, logger),
		Accounts: handler.NewAccountHandler(accountService, handler.CookieConfig{
			Name:   cfg.CookieName,
			Secure: cfg.CookieSecure,
			TTL:    cfg.JWTExpiresIn,
		}, logger),
		Transactions: handler.NewTransactionHandler(transactionService, logger),
		Reports:      handler.NewReportHandler(reportService, logger),
		Admin:        handler.NewAdminHandler(reportService, settingsFromConfig(cfg), logger),
		Metrics:      handler.NewMetricsHandler(recorder),
	}

	router := server.NewRouter(server.RouterConfig{
		Logger: logger,
		Gate: middleware.NewGate(middleware.GateConfig{
			Logger:     logger,
			Tokens:     tokens,
			CookieName: cfg.CookieName,
		}),
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		CORS:           corsConfig,
		RateLimit:      rateLimit,
		TrustedProxies: trustedProxies,
	}, handlers)

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the database pool.
	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"login_rate_limit", cfg.LoginRateLimitEnabled && cacheClient != nil,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// settingsFromConfig lists the runtime settings shown to administrators.
func settingsFromConfig(cfg *config.Config) dto.SettingsResponse {
	return dto.SettingsResponse{
		Environment:           cfg.AppEnv,
		TokenTTL:              cfg.JWTExpiresIn.String(),
		CookieName:            cfg.CookieName,
		CookieSecure:          cfg.CookieSecure,
		LoginRateLimitEnabled: cfg.LoginRateLimitEnabled,
		LoginRateLimitRPS:     float64(cfg.LoginRateLimitRPS),
		LoginRateLimitBurst:   cfg.LoginRateLimitBurst,
		RedisConfigured:       cfg.RedisURL != "",
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
