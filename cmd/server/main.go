package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"payflow/internal/app"
	"payflow/internal/cache"
	"payflow/internal/config"
	"payflow/internal/events"
	"payflow/internal/gateway"
	"payflow/internal/handler"
	"payflow/internal/lifecycle"
	"payflow/internal/repository/postgres"
	"payflow/internal/service"
)

func main() {
	// Logger.
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	// Load configuration (.env is optional).
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize New Relic")
		} else {
			log.Info().Str("app", cfg.NewRelic.AppName).Msg("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to Redis")

	// Lifecycle events are optional; run without a broker when disabled.
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		rabbit, err := events.NewRabbitPublisher(cfg.Events.URL, cfg.Events.Exchange, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to rabbitmq, events disabled")
		} else {
			publisher = rabbit
			log.Info().Str("exchange", cfg.Events.Exchange).Msg("connected to RabbitMQ")
		}
	}
	defer publisher.Close()

	// Wire dependencies.
	server := wireServer(db, redisClient, publisher, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, publisher events.Publisher, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Processor API client and checkout adapter.
	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:      cfg.Gateway.BaseURL,
		ClientID:     cfg.Gateway.ClientID,
		ClientSecret: cfg.Gateway.ClientSecret,
		APIVersion:   cfg.Gateway.APIVersion,
		Timeout:      cfg.Gateway.Timeout,
	}, log.Logger)
	checkout := gateway.NewHostedCheckout(cfg.Gateway.CheckoutURL, log.Logger)

	// Display sinks.
	journalRepo := postgres.NewJournalRepository(db)
	snapshotStore := cache.NewSnapshotStore(redisClient)

	// Lifecycle service.
	paymentService := service.NewPaymentService(lifecycle.Deps{
		Orders:    gatewayClient,
		Verifier:  gatewayClient,
		Widget:    checkout,
		ReturnURL: cfg.Gateway.ReturnURL,
		Logger:    log.Logger,
	}, journalRepo, snapshotStore, publisher, log.Logger)

	// Initialize handlers.
	paymentHandler := handler.NewPaymentHandler(paymentService)
	callbackHandler := handler.NewCallbackHandler(paymentService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PaymentHandler:  paymentHandler,
		CallbackHandler: callbackHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
