// Package main запускает HTTP-сервер портала доставки.
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

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/parcel-portal/internal/auth"
	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/config"
	"github.com/mmeshcher/parcel-portal/internal/events"
	"github.com/mmeshcher/parcel-portal/internal/handler"
	"github.com/mmeshcher/parcel-portal/internal/i18n"
	"github.com/mmeshcher/parcel-portal/internal/middleware"
	"github.com/mmeshcher/parcel-portal/internal/repository"
	"github.com/mmeshcher/parcel-portal/internal/service"
	"github.com/mmeshcher/parcel-portal/internal/tracing"
)

const sessionCleanupInterval = time.Hour

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		sugar.Fatalw("tracing initialization error", "error", err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			sugar.Warnw("tracing shutdown error", "error", err.Error())
		}
	}()

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer repo.Close()

	health := []handler.Pinger{repo}

	var respCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			sugar.Fatalw("redis initialization error", "error", err.Error())
		}
		defer rc.Close()
		respCache = rc
		health = append(health, rc)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kp.Close()
		publisher = kp
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, logger)
	svc := service.NewService(client, respCache, publisher, logger)

	bundle, err := i18n.Load()
	if err != nil {
		sugar.Fatalw("locales initialization error", "error", err.Error())
	}

	provider, err := auth.NewProvider(auth.ProviderConfig{
		IssuerURL:    cfg.OIDCIssuerURL,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
	})
	if err != nil {
		sugar.Fatalw("identity provider initialization error", "error", err.Error())
	}

	claims, err := auth.NewClaimsParser(cfg.OIDCPublicKey)
	if err != nil {
		sugar.Fatalw("token verification key error", "error", err.Error())
	}

	if cfg.CookieSecret == "" {
		sugar.Warn("COOKIE_SECRET is not set: sessions will not survive a restart")
	}
	signer := auth.NewSigner(cfg.CookieSecret)

	authMiddleware := middleware.NewAuthMiddleware(signer, repo, provider, claims, logger)

	h := handler.NewHandler(handler.Deps{
		Service:     svc,
		Bundle:      bundle,
		Auth:        authMiddleware,
		Signer:      signer,
		Provider:    provider,
		Claims:      claims,
		Sessions:    repo,
		Health:      health,
		PaymentWait: cfg.PaymentWait,
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая очистка устаревших сессий
	g.Go(func() error {
		cleanupSessions(ctx, repo, cfg.SessionMaxAge, logger)
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting portal server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

type staleSessionDeleter interface {
	DeleteStaleSessions(ctx context.Context, maxAge time.Duration) (int64, error)
}

// cleanupSessions раз в час удаляет сессии старше maxAge.
func cleanupSessions(ctx context.Context, repo staleSessionDeleter, maxAge time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteStaleSessions(ctx, maxAge)
			if err != nil {
				logger.Error("delete stale sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("stale sessions deleted", zap.Int64("count", n))
			}
		}
	}
}
