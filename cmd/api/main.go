package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-intake-agent/internal/api/router"
	"github.com/wolfman30/clinic-intake-agent/internal/appointments"
	appconfig "github.com/wolfman30/clinic-intake-agent/internal/config"
	"github.com/wolfman30/clinic-intake-agent/internal/extraction"
	"github.com/wolfman30/clinic-intake-agent/internal/http/handlers"
	"github.com/wolfman30/clinic-intake-agent/internal/intake"
	"github.com/wolfman30/clinic-intake-agent/internal/llm"
	"github.com/wolfman30/clinic-intake-agent/internal/observability/metrics"
	"github.com/wolfman30/clinic-intake-agent/internal/scheduling"
	"github.com/wolfman30/clinic-intake-agent/internal/speech"
	"github.com/wolfman30/clinic-intake-agent/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-intake-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Appointment store
	store, cleanup, err := newStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize appointment store", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer cleanup()

	// Language model client
	llmClient, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	intakeMetrics := metrics.NewIntakeMetrics(registry)

	// Pipeline service
	svc := intake.NewService(
		extraction.NewInterpreter(llmClient, cfg.DoctorName, logger),
		scheduling.NewProposer(llmClient, scheduling.ProposerConfig{
			DoctorName:       cfg.DoctorName,
			OfficeHoursStart: cfg.OfficeHoursStart,
			OfficeHoursEnd:   cfg.OfficeHoursEnd,
			SlotMinutes:      cfg.AppointmentSlotMinutes,
		}, logger),
		scheduling.NewComposer(llmClient, cfg.DoctorName),
		store,
		intakeMetrics,
		logger,
		cfg.DefaultTimezone,
	)

	// Speech synthesis
	speechClient := speech.New(speech.Config{
		APIKey:         cfg.ElevenLabsAPIKey,
		BaseURL:        cfg.ElevenLabsBaseURL,
		DefaultVoiceID: cfg.ElevenLabsVoiceID,
		Logger:         logger,
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		IntakeHandler:       handlers.NewIntakeHandler(svc, logger),
		AppointmentsHandler: handlers.NewAppointmentsHandler(svc, logger),
		SpeechHandler:       handlers.NewSpeechHandler(speechClient, intakeMetrics, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// newStore builds the appointment store selected by STORE_BACKEND. The
// returned cleanup releases the backend's connections; for the file store
// it is a no-op.
func newStore(cfg *appconfig.Config, logger *logging.Logger) (appointments.Store, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case "file", "":
		return appointments.NewFileStore(cfg.DataFile, logger), noop, nil

	case "redis":
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return appointments.NewRedisStore(client, "", logger), func() { _ = client.Close() }, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := appointments.NewPGStore(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
