package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nimeshabuddhika/payment-gateway-api/pkg"
	"github.com/nimeshabuddhika/payment-gateway-api/services/gateway-api/app"
	"github.com/nimeshabuddhika/payment-gateway-api/services/gateway-api/configs"
	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger until the config tells us the mode
	logger, err := pkg.NewLogger(pkg.Mode(os.Getenv("APP_ENV")))
	if err != nil {
		panic(err)
	}

	cfg, err := configs.Load(logger)
	if err != nil {
		// exits with status 1
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err = pkg.NewLogger(cfg.Mode())
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := app.NewApp(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialize app", zap.Error(err))
	}

	// Start a server in goroutine to allow signal handling
	go func() {
		logger.Info("Payment gateway API started", zap.String("port", cfg.Port), zap.String("env", string(cfg.Mode())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Handle shutdown signals (SIGINT, SIGTERM) for a K8s pod termination grace period
	<-ctx.Done()
	logger.Info("shutting down")

	// Timeout context for draining connections (align with K8s terminationGracePeriodSeconds)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	cleanup()

	// Flush logs before exit
	_ = logger.Sync()
}
