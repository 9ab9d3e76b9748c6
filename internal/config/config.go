package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultGasPrice is used when GAS_PRICE is unset
const DefaultGasPrice = "0.00125ukuji"

// Config holds all configuration for the bot
type Config struct {
	// Chain endpoints
	RESTEndpoint string
	RPCEndpoint  string

	// Wallet
	Mnemonic      string
	AddressPrefix string

	// Market
	MarketAddress string
	OracleDenom   string
	MaxLTV        float64

	// Fees
	GasPrice string

	// Loop
	PollInterval time.Duration

	// Mode
	Debug bool

	// Journal (optional, empty disables it)
	DatabasePath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Chain endpoints
		RESTEndpoint: os.Getenv("REST_ENDPOINT"),
		RPCEndpoint:  os.Getenv("RPC_ENDPOINT"),

		// Wallet
		Mnemonic:      os.Getenv("MNEMONIC"),
		AddressPrefix: getEnv("ADDRESS_PREFIX", "kujira"),

		// Market
		MarketAddress: os.Getenv("MARKET_ADDRESS"),
		OracleDenom:   os.Getenv("MARKET_ORACLE_DENOM"),

		// Fees
		GasPrice: getEnv("GAS_PRICE", DefaultGasPrice),

		// Loop
		PollInterval: getEnvDuration("POLL_INTERVAL", 30*time.Second),

		// Mode
		Debug: getEnvBool("DEBUG", true),

		// Journal
		DatabasePath: os.Getenv("DATABASE_PATH"),
	}

	// Validate required fields
	required := []struct {
		key   string
		value string
	}{
		{"REST_ENDPOINT", cfg.RESTEndpoint},
		{"RPC_ENDPOINT", cfg.RPCEndpoint},
		{"MNEMONIC", cfg.Mnemonic},
		{"MARKET_ADDRESS", cfg.MarketAddress},
		{"MARKET_ORACLE_DENOM", cfg.OracleDenom},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s is required", r.key)
		}
	}

	// Parse max LTV
	ltv := os.Getenv("MARKET_MAX_LTV")
	if ltv == "" {
		return nil, fmt.Errorf("MARKET_MAX_LTV is required")
	}
	maxLTV, err := strconv.ParseFloat(ltv, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_MAX_LTV: %w", err)
	}
	if maxLTV <= 0 || maxLTV > 1 {
		return nil, fmt.Errorf("invalid MARKET_MAX_LTV: %v not in (0, 1]", maxLTV)
	}
	cfg.MaxLTV = maxLTV

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
