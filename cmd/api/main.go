package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tidycall/cleaning-voice-agent/internal/api/router"
	appconfig "github.com/tidycall/cleaning-voice-agent/internal/config"
	"github.com/tidycall/cleaning-voice-agent/internal/dialogue"
	"github.com/tidycall/cleaning-voice-agent/internal/http/handlers"
	"github.com/tidycall/cleaning-voice-agent/internal/notify"
	"github.com/tidycall/cleaning-voice-agent/internal/observability/metrics"
	"github.com/tidycall/cleaning-voice-agent/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting cleaning-voice-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Session store: Redis when configured, in-memory otherwise.
	var store dialogue.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cancel()
		store = dialogue.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		store = dialogue.NewMemoryStore()
		logger.Warn("using in-memory session store; sessions will not survive a restart")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	dialogueMetrics := metrics.NewDialogueMetrics(registry)

	// Draft proposer is optional; without a key the lexical extractors
	// carry the whole flow.
	var proposer dialogue.DraftProposer
	if cfg.GeminiAPIKey != "" {
		gp, err := dialogue.NewGeminiProposer(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.GeminiTimeout)
		if err != nil {
			logger.Error("gemini client init failed", "error", err)
			os.Exit(1)
		}
		proposer = gp
		logger.Info("gemini draft proposer enabled", "model", cfg.GeminiModelID)
	} else {
		logger.Warn("GEMINI_API_KEY not set; running without the draft proposer")
	}

	if cfg.PricingWebhookURL == "" || cfg.BookingWebhookURL == "" {
		logger.Error("PRICING_WEBHOOK_URL and BOOKING_WEBHOOK_URL are required")
		os.Exit(1)
	}
	pricingClient := dialogue.NewWebhookPricingClient(cfg.PricingWebhookURL, cfg.WebhookTimeout)
	bookingClient := dialogue.NewWebhookBookingClient(cfg.BookingWebhookURL, cfg.WebhookTimeout)

	var notifier dialogue.BookingNotifier
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger.Component("notify")); sender != nil {
		notifier = notify.NewService(sender, cfg.OpsNotifyEmail, logger.Component("notify"))
	} else {
		logger.Warn("SENDGRID_API_KEY not set; booking confirmation emails disabled")
	}

	coordinator := dialogue.NewCoordinator(pricingClient, bookingClient, notifier, logger.Component("actions"))
	engine := dialogue.NewEngine(dialogue.EngineConfig{
		Proposer:       proposer,
		Actions:        coordinator,
		Metrics:        dialogueMetrics,
		Logger:         logger.Component("dialogue"),
		MaxSilentTurns: cfg.MaxSilentTurns,
	})

	telephony := handlers.NewTelephonyHandler(engine, store, dialogueMetrics, logger.Component("telephony"))

	r := router.New(&router.Config{
		Logger:             logger,
		Telephony:          telephony,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: strings.Split(cfg.AllowedOrigins, ","),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
