package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/bank"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/broker"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/config"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/contract"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/host"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/rpc"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/sqs_query"
	"github.com/Cogwheel-Validator/affiliate-swap-hub/affiliate/store"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the RPC package
	rpc.SetLogger(log)
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "./hub_config.toml", "config file for the hub")
	remoteConfig := flag.String("remote-config", "", "go-getter URL of a remote config to download first")
	flag.Parse()

	path := *configPath
	if *remoteConfig != "" {
		downloaded, err := config.FetchRemoteConfig(*remoteConfig, os.TempDir())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch remote config")
		}
		path = downloaded
	}

	log.Info().
		Str("config", path).
		Msg("Starting Affiliate Swap Hub")

	// Load hub configuration
	cfg, err := config.NewDefaultHubConfigLoader().LoadHubConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Open the persistent store
	hubStore, err := store.OpenBolt(cfg.Hub.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := hubStore.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// Create the contract over its capabilities
	validator := broker.NewBech32Validator(cfg.Hub.Bech32Prefix)
	hubContract := contract.New(hubStore, validator, cfg.Hub.SelfAddress)

	// Seed the fee ceiling on first start; an already-initialized store
	// keeps its value.
	seed, err := cfg.SeedMaxFee()
	if err != nil {
		log.Fatal().Err(err).Msg("Bad max fee seed")
	}
	if _, err := hubContract.Instantiate(seed); err != nil {
		if !errors.Is(err, contract.ErrAlreadyInitialized) {
			log.Fatal().Err(err).Msg("Failed to initialize contract")
		}
		log.Info().Msg("Store already initialized, keeping stored max fee")
	}
	maxFee, err := hubContract.MaxFeePercentage()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read max fee")
	}
	log.Info().Str("max_fee_percentage", maxFee.String()).Msg("Fee ceiling active")

	// Initialize the Osmosis SQS swap engine
	var sqsClient *sqsquery.Client
	if len(cfg.Sqs.URLs) > 1 {
		sqsClient, err = sqsquery.NewClientWithFailover(cfg.Sqs.URLs[0], cfg.Sqs.URLs[1:])
		if err == nil {
			log.Info().
				Str("primary", cfg.Sqs.URLs[0]).
				Int("backups", len(cfg.Sqs.URLs)-1).
				Msg("Osmosis SQS engine initialized with failover")
		}
	} else {
		sqsClient, err = sqsquery.NewClient(cfg.Sqs.URLs[0])
		if err == nil {
			log.Info().
				Str("url", cfg.Sqs.URLs[0]).
				Msg("Osmosis SQS engine initialized")
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create SQS client")
	}
	if cfg.Sqs.TimeoutSeconds > 0 {
		sqsClient.SetTimeout(time.Duration(cfg.Sqs.TimeoutSeconds) * time.Second)
	}
	engine := broker.NewOsmosisSqsEngine(sqsClient, cfg.Sqs.SingleRoute, log)

	// Create the hub account ledger and the host around the contract
	ledger := bank.NewLedger(cfg.Hub.SelfAddress, log)
	hub := host.New(hubContract, ledger, engine, log)

	// Create the API server configuration
	serverConfig := buildServerConfig(cfg)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create the API server
	server, err := rpc.NewServer(ctx, serverConfig, hub)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create API server")
	}

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// buildServerConfig converts the loaded HubConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.HubConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Server.Address,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		EnableMetrics:  cfg.Server.EnableMetrics,
		RatePerMinute:  cfg.Server.RatePerMinute,
		Burst:          cfg.Server.Burst,
	}

	if cfg.Server.EnableMetrics {
		otelConfig := rpc.DefaultOTelConfig()
		serverConfig.OTelConfig = otelConfig
	}

	return serverConfig
}
