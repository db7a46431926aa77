package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/api"
	"carteira/internal/auth"
	"carteira/internal/backend"
	"carteira/internal/cache"
	"carteira/internal/cli"
	"carteira/internal/events"
	apphttp "carteira/internal/http"
	"carteira/internal/log"
	"carteira/internal/realtime"
	"carteira/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	client, err := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.APITimeout))
	if err != nil {
		logger.Error("Failed to create API client", log.FieldError, err.Error(), "url", cfg.APIBaseURL)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	state, err := backend.NewFactory(logger).Create(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize state backend", log.FieldError, err.Error(),
			"sessions", cfg.SessionBackend, "cache", cfg.CacheBackend)
		os.Exit(1)
	}

	cacheManager := cache.NewManager()
	for _, c := range state.Cleaners {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(time.Minute)

	bus := events.NewBus(logger)
	hub := realtime.NewHub(logger)
	dashboard := services.NewDashboard(client, state.Totals, state.Ledger, logger)
	bus.SubscribeAll(dashboard.HandleEvent)
	bus.SubscribeAll(hub.Handle)

	var relay *amqp.Client
	if cfg.AMQPURL != "" {
		// Relayed from inside mutation requests, so a dead broker must fail fast.
		relay, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger,
			amqp.WithDialTimeout(3*time.Second))
		if err != nil {
			// The relay is optional; pages keep working without the mirror.
			logger.Warn("AMQP unavailable, ledger mirror disabled", log.FieldError, err.Error())
		} else {
			bus.Subscribe(events.TransactionChanged, relay.Relay)
			logger.Info("Ledger events relayed to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, apphttp.Deps{
		API:        client,
		Guard:      auth.NewGuard(state.Sessions, cfg.CookieSecure),
		Ledger:     services.NewLedger(client, bus, logger),
		Accounts:   services.NewAccounts(client, bus, logger),
		Categories: services.NewCategories(client),
		Cards:      services.NewCards(client, bus, logger),
		Dashboard:  dashboard,
		Profile:    services.NewProfile(client),
		Hub:        hub,
		Checks:     state.Checks,
	}, logger)
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cacheManager.Stop()
		if relay != nil {
			if err := relay.Close(); err != nil {
				logger.Warn("Closing AMQP client failed", log.FieldError, err.Error())
			}
		}
		if err := state.Cleanup(); err != nil {
			logger.Warn("Releasing state backend failed", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting carteira server",
		"port", cfg.Port,
		"api", cfg.APIBaseURL,
		"sessions", cfg.SessionBackend,
		"cache", cfg.CacheBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
