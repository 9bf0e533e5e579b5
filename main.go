package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/settlex-hq/settlex-settler/pkg/api"
	"github.com/settlex-hq/settlex-settler/pkg/chainclient"
	"github.com/settlex-hq/settlex-settler/pkg/circuitbreaker"
	"github.com/settlex-hq/settlex-settler/pkg/config"
	"github.com/settlex-hq/settlex-settler/pkg/health"
	"github.com/settlex-hq/settlex-settler/pkg/importer"
	"github.com/settlex-hq/settlex-settler/pkg/logger"
	"github.com/settlex-hq/settlex-settler/pkg/notifier"
	"github.com/settlex-hq/settlex-settler/pkg/settlement"
	"github.com/settlex-hq/settlex-settler/pkg/store"
	"github.com/settlex-hq/settlex-settler/pkg/tokens"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stdLogger := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the chain and bind the contracts
	chain, err := chainclient.New(ctx, cfg, stdLogger)
	if err != nil {
		log.Fatalf("Failed to connect chain client: %v", err)
	}

	registry := tokens.NewRegistry()

	// Local history and template persistence
	db, err := store.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer db.Close()
	st := store.New(db)

	var notify settlement.Notifier = notifier.Noop{}
	if cfg.SMTP.Enabled {
		notify = notifier.NewEmailNotifier(notifier.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, stdLogger)
	}

	breaker := circuitbreaker.New(
		cfg.CircuitBreaker.Enabled,
		cfg.CircuitBreaker.Threshold,
		cfg.CircuitBreaker.WindowDuration,
		cfg.CircuitBreaker.ResetTimeout,
	)

	builder := settlement.NewBuilder(
		registry,
		common.HexToAddress(cfg.PayrollAddress),
		common.HexToAddress(cfg.DEXAddress),
		cfg.DirectPaymentPolicy,
	)
	submitter := settlement.NewSubmitter(chain, cfg.ReceiptTimeout, stdLogger)

	svc := settlement.NewService(settlement.ServiceParams{
		Backend:     chain,
		Builder:     builder,
		Submitter:   submitter,
		Registry:    registry,
		Breaker:     breaker,
		Notifier:    notify,
		History:     st,
		Logger:      stdLogger,
		SourceToken: cfg.SourceToken,
		AutoSwap:    cfg.AutoSwap,
	})

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Println("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	// Health and metrics server
	healthServer := health.NewServer(cfg.MetricsPort, chain, breaker, registry)
	go healthServer.Start()

	// HTTP API
	router := api.NewRouter(svc, chain, st, importer.New(registry), registry, stdLogger)
	httpServer := &http.Server{Addr: ":" + cfg.APIPort, Handler: router}
	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	stdLogger.Info("Starting settler API on port %s (employer %s)", cfg.APIPort, chain.EmployerAddress().Hex())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}
