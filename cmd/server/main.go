package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coursemarket/backend/config"
	"github.com/coursemarket/backend/internal/email"
	"github.com/coursemarket/backend/internal/health"
	"github.com/coursemarket/backend/internal/infrastructure/postgres"
	ctxlog "github.com/coursemarket/backend/internal/log"
	"github.com/coursemarket/backend/internal/metrics"
	"github.com/coursemarket/backend/internal/payment"
	"github.com/coursemarket/backend/internal/ratelimit"
	"github.com/coursemarket/backend/internal/token"
	httptransport "github.com/coursemarket/backend/internal/transport/http"
	"github.com/coursemarket/backend/internal/transport/http/handler"
	"github.com/coursemarket/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	codec := token.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL())

	// Users & auth
	userRepo := postgres.NewUserRepository(pool)
	emailSender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	authUsecase := usecase.NewAuthUsecase(userRepo, codec, emailSender, logger)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Cart
	cartRepo := postgres.NewCartRepository(pool)
	cartUsecase := usecase.NewCartUsecase(cartRepo)
	cartHandler := handler.NewCartHandler(cartUsecase, logger)

	// Payments
	gateway := payment.NewGateway(cfg.Env, cfg.StripeAPIKey, logger)
	paymentHandler := handler.NewPaymentHandler(gateway, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)
	limiter := ratelimit.New(cfg.RateLimit, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(httptransport.RouterDeps{
			Logger:         logger,
			Checker:        checker,
			AuthHandler:    authHandler,
			CartHandler:    cartHandler,
			PaymentHandler: paymentHandler,
			Users:          userRepo,
			Codec:          codec,
			Limiter:        limiter,
			CORSOrigins:    cfg.CORSOrigins,
		}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
