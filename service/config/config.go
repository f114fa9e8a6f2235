package config

import (
	"fmt"
	"os"
	"time"
)

// knownNetworks are the cluster names we accept and use for explorer
// link construction.
var knownNetworks = map[string]bool{
	"mainnet": true,
	"devnet":  true,
	"testnet": true,
}

// Config holds all application configuration loaded from environment
// variables. All required fields are validated at startup to ensure
// fail-fast behavior.
type Config struct {
	// Server configuration
	ServerAddr string
	LogLevel   string

	// Solana configuration
	SolanaRPCURL  string
	SolanaNetwork string // "mainnet", "devnet" or "testnet"

	// RPC fetch timeout for a single analyze request
	FetchTimeout time.Duration
}

// Load reads configuration from environment variables and validates all
// required fields. Returns an error if any required configuration is
// missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.SolanaRPCURL = os.Getenv("SOLANA_RPC_URL")
	if cfg.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SOLANA_RPC_URL is required"))
	}

	cfg.SolanaNetwork = getEnvOrDefault("SOLANA_NETWORK", "mainnet")
	if !knownNetworks[cfg.SolanaNetwork] {
		errs = append(errs, fmt.Errorf("SOLANA_NETWORK: unknown network %q", cfg.SolanaNetwork))
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "60s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.FetchTimeout = fetchTimeout
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
// Useful for server initialization where misconfiguration should halt
// startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid. This is useful for
// testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SolanaRPCURL == "" {
		errs = append(errs, fmt.Errorf("SolanaRPCURL is required"))
	}
	if !knownNetworks[c.SolanaNetwork] {
		errs = append(errs, fmt.Errorf("SolanaNetwork: unknown network %q", c.SolanaNetwork))
	}
	if c.FetchTimeout < time.Second {
		errs = append(errs, fmt.Errorf("FetchTimeout must be at least 1 second"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

// getEnvOrDefault returns the environment variable value or a default if
// not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a
// default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}
