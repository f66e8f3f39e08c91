package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/dataspace-hub/dataspace-hub/internal/api/http"
	appNegotiation "github.com/dataspace-hub/dataspace-hub/internal/application/negotiation"
	"github.com/dataspace-hub/dataspace-hub/internal/config"
	domainNegotiation "github.com/dataspace-hub/dataspace-hub/internal/domain/negotiation"
	"github.com/dataspace-hub/dataspace-hub/internal/infrastructure/dispatcher"
	"github.com/dataspace-hub/dataspace-hub/internal/infrastructure/identity"
	"github.com/dataspace-hub/dataspace-hub/internal/infrastructure/memory"
	"github.com/dataspace-hub/dataspace-hub/internal/infrastructure/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// store
	var store domainNegotiation.Store
	var tx appNegotiation.TransactionContext
	if cfg.StoreBackend == "postgres" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
			log.Fatalf("migration error: %v", err)
		}
		store = postgres.NewNegotiationStore(pool, cfg.NegotiationLeaseTTL)
		tx = postgres.NewTransactionContext(pool)
	} else {
		store = memory.NewNegotiationStore(cfg.NegotiationLeaseTTL)
	}

	// infrastructure
	identitySvc := identity.NewService(cfg.ConnectorID, cfg.ProtocolTokenSecret, cfg.ProtocolTokenTTL)
	remoteDispatcher := dispatcher.NewHTTPDispatcher(nil, identitySvc, logger)

	// managers and service
	managerCfg := appNegotiation.Config{
		ConnectorID:     cfg.ConnectorID,
		CallbackAddress: cfg.CallbackAddress,
		BatchSize:       cfg.NegotiationBatchSize,
		IterationWait:   cfg.NegotiationIterationWait,
		SendRetryLimit:  cfg.NegotiationSendRetryLimit,
		Workers:         cfg.NegotiationWorkers,
	}
	consumerMgr := appNegotiation.NewConsumerManager(store, remoteDispatcher, managerCfg, logger)
	providerMgr := appNegotiation.NewProviderManager(store, remoteDispatcher, managerCfg, logger)
	negotiationSvc := appNegotiation.NewService(store, consumerMgr, providerMgr, tx, logger)

	// API server
	apiServer := httpapi.NewServer(negotiationSvc, identitySvc, logger)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// background loops
	go func() {
		if err := consumerMgr.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("consumer manager stopped")
		}
	}()
	go func() {
		if err := providerMgr.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("provider manager stopped")
		}
	}()

	// start server
	go func() {
		logger.Info().
			Str("addr", cfg.ServerAddr).
			Str("connector_id", cfg.ConnectorID).
			Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(ctxShutdown)
}
