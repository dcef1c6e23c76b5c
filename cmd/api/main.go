package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/guide-delivery-backend/internal/api"
	"github.com/nyashahama/guide-delivery-backend/internal/config"
	"github.com/nyashahama/guide-delivery-backend/internal/delivery"
	"github.com/nyashahama/guide-delivery-backend/internal/mail"
	"github.com/nyashahama/guide-delivery-backend/internal/payment"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded",
		"env", cfg.Env,
		"port", cfg.Port,
		"provider", cfg.PaymentProvider,
		"delivery_mode", cfg.DeliveryMode,
	)

	// ── Payment gateway ───────────────────────────────────────────────────────
	var gateway payment.Client
	switch cfg.PaymentProvider {
	case config.ProviderStripe:
		gateway = payment.NewStripeClient(cfg.StripeSecretKey)
		logger.Info("payment: using Stripe")
	default:
		gateway = payment.NewTossClient(cfg.TossSecretKey, cfg.GatewayTimeout)
		logger.Info("payment: using Toss Payments")
	}

	// ── Email ─────────────────────────────────────────────────────────────────
	var sender mail.Sender
	if cfg.ResendAPIKey != "" {
		sender = mail.NewResendSender(cfg.ResendAPIKey, cfg.EmailFromAddr, cfg.EmailFromName)
		logger.Info("mail: using Resend", "from", cfg.EmailFromAddr)
	} else {
		sender = mail.NewLogSender(logger)
		logger.Warn("mail: RESEND_API_KEY unset, using log-only sender")
	}

	// ── Guide asset ───────────────────────────────────────────────────────────
	var assets mail.AssetLoader
	if cfg.DeliveryMode == config.ModeAttachment {
		assets = mail.NewFileAsset(cfg.PDFPath)
		// Fail fast on a missing PDF rather than at the first sale.
		if _, err := assets.Load(); err != nil {
			return fmt.Errorf("guide asset: %w", err)
		}
		logger.Info("guide asset loaded", "path", cfg.PDFPath)
	}

	// ── Workflow ──────────────────────────────────────────────────────────────
	wf := delivery.New(gateway, sender, assets, delivery.Options{
		Mode:        cfg.DeliveryMode,
		DownloadURL: cfg.PDFDownloadLink,
		GuidePrice:  cfg.GuidePrice,
	}, logger)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(wf, api.Config{Env: cfg.Env}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // gateway + email happen inside one request
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight deliveries up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
