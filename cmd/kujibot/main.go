// Kujibot - Liquidation bot for Kujira collateralized-debt markets
//
// Every cycle the bot reads the market's oracle price, scans all positions
// held by the market contract, and liquidates the ones whose debt (with
// accrued interest) exceeds max LTV of their collateral at that price.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/web3guy0/kujibot/internal/config"
	"github.com/web3guy0/kujibot/internal/database"
	"github.com/web3guy0/kujibot/internal/kujira"
	"github.com/web3guy0/kujibot/internal/liquidator"
	"github.com/web3guy0/kujibot/internal/market"
	"github.com/web3guy0/kujibot/internal/monitor"
)

const version = "1.0.0"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().
		Str("version", version).
		Str("market", cfg.MarketAddress).
		Str("denom", cfg.OracleDenom).
		Float64("max_ltv", cfg.MaxLTV).
		Msg("⚡ Kujibot starting...")

	// Stop on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Kujibot exited")
	}

	log.Info().Msg("👋 Goodbye!")
}

// run wires the bot from cfg and blocks until ctx is cancelled or the monitor
// fails. Everything it opens is released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	// 1. Wallet
	wallet, err := kujira.NewWalletFromMnemonic(cfg.Mnemonic, cfg.AddressPrefix)
	if err != nil {
		return fmt.Errorf("derive wallet: %w", err)
	}

	gasPrice, err := kujira.ParseGasPrice(cfg.GasPrice)
	if err != nil {
		return fmt.Errorf("parse gas price: %w", err)
	}

	// 2. Chain clients
	rest := kujira.NewClient(cfg.RESTEndpoint)
	rpc := kujira.NewRPCClient(cfg.RPCEndpoint)

	signer := kujira.NewSigningClient(wallet, rest, rpc, gasPrice)
	if err := signer.Connect(ctx); err != nil {
		return err
	}

	// 3. Scanner and liquidator
	scanner := market.NewScanner(rest, cfg.MaxLTV)
	liq := liquidator.New(signer, cfg.MarketAddress)

	// 4. Optional journal
	if cfg.DatabasePath != "" {
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("initialize journal: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close journal")
			}
		}()
		liq.SetRecorder(db)
	}

	// 5. Monitor
	mon := monitor.New(monitor.Config{
		MarketAddress: cfg.MarketAddress,
		OracleDenom:   cfg.OracleDenom,
		PollInterval:  cfg.PollInterval,
	}, rest, scanner, liq)

	return mon.Run(ctx)
}
