package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	specpkg "github.com/fanleague/fanleague/api"
	"github.com/fanleague/fanleague/internal/api"
	"github.com/fanleague/fanleague/internal/api/handler"
	"github.com/fanleague/fanleague/internal/api/middleware"
	"github.com/fanleague/fanleague/internal/auth"
	"github.com/fanleague/fanleague/internal/config"
	"github.com/fanleague/fanleague/internal/country"
	"github.com/fanleague/fanleague/internal/database"
	"github.com/fanleague/fanleague/internal/group"
	"github.com/fanleague/fanleague/internal/mail"
	"github.com/fanleague/fanleague/internal/metrics"
	"github.com/fanleague/fanleague/internal/team"
	"github.com/fanleague/fanleague/internal/tournament"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("database migrations applied")
	}

	db, err := database.New(startCtx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := database.NewRedis(startCtx, cfg.RedisURL)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}()

	identity := auth.NewService(
		auth.NewRepository(db.Pool()),
		auth.NewRoleRepository(db.Pool()),
		auth.NewRedisSessionStore(rdb),
		auth.NewTokenManager(cfg.TokenSecret, cfg.TokenIssuer, cfg.ConfirmationTokenTTL),
		newMailSender(cfg),
		auth.ServiceConfig{
			BcryptCost:         cfg.BcryptCost,
			SessionTTL:         cfg.SessionTTL,
			RememberSessionTTL: cfg.RememberSessionTTL,
			LockoutMaxAttempts: cfg.LockoutMaxAttempts,
			LockoutDuration:    cfg.LockoutDuration,
			BaseURL:            cfg.BaseURL,
		},
	)

	if cfg.AdminEmail != "" {
		created, err := identity.BootstrapAdmin(startCtx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			slog.Error("failed to bootstrap admin account", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("admin account created", "email", cfg.AdminEmail)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.LoginRatePerMinute))
	defer limiter.Stop()

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       db,
		CachePinger:    handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		Version:        cfg.Version,
		OpenAPISpec:    specpkg.OpenAPISpec,
		Metrics:        metrics.NewCollector(reg),
		Gatherer:       reg,
		Identity:       identity,
		Countries:      country.NewRepository(db.Pool()),
		Teams:          team.NewUnitOfWork(team.NewRepository(db.Pool())),
		Tournaments:    tournament.NewRepository(db.Pool()),
		Groups:         group.NewService(group.NewRepository(db.Pool())),
		AccountLimiter: limiter,
		Cookie:         handler.CookieConfig{Secure: cfg.CookieSecure},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting FanLeague server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(logHandler))
}

// newMailSender falls back to logging confirmation mail when no relay is set.
func newMailSender(cfg *config.Config) mail.Sender {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set; confirmation mail will be logged, not sent")
		return mail.NewLogSender(nil)
	}
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
