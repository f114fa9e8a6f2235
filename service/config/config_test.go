package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults tests loading with only the required variable set.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "mainnet", cfg.SolanaNetwork)
	assert.Equal(t, 60*time.Second, cfg.FetchTimeout)
}

// TestLoad_MissingRPCURL tests fail-fast behavior on missing config.
func TestLoad_MissingRPCURL(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLANA_RPC_URL")
}

// TestLoad_UnknownNetwork tests network validation.
func TestLoad_UnknownNetwork(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	t.Setenv("SOLANA_NETWORK", "betanet")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLANA_NETWORK")
}

// TestLoad_InvalidTimeout tests duration parsing errors.
func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com")
	t.Setenv("FETCH_TIMEOUT", "soon")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_TIMEOUT")
}

// TestValidate tests direct validation of a constructed config.
func TestValidate(t *testing.T) {
	cfg := &Config{
		SolanaRPCURL:  "https://api.devnet.solana.com",
		SolanaNetwork: "devnet",
		FetchTimeout:  30 * time.Second,
	}
	assert.NoError(t, cfg.Validate())

	cfg.FetchTimeout = time.Millisecond
	assert.Error(t, cfg.Validate())
}
