package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyze_Success tests the request body and response decoding.
func TestAnalyze_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/v1/analyze", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sig-or-url", req["input"])
		assert.Equal(t, "Recipient", req["expected_recipient"])

		decimals := uint8(6)
		json.NewEncoder(w).Encode(AnalysisReport{
			Signature:        "sig",
			Slot:             42,
			RecipientAddress: "Recipient",
			Asset: Asset{
				Kind:     "token",
				Amount:   "5000000",
				Mint:     "M",
				Decimals: &decimals,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	report, err := c.Analyze(context.Background(), "sig-or-url", "Recipient")

	require.NoError(t, err)
	assert.Equal(t, "sig", report.Signature)
	assert.Equal(t, "token", report.Asset.Kind)
	assert.Equal(t, "5000000", report.Asset.Amount)
}

// TestAnalyze_ServerError tests that the server's error message is
// surfaced.
func TestAnalyze_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "transaction not found"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, nil)
	_, err := c.Analyze(context.Background(), "sig", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction not found")
}

// TestHealth tests both health outcomes.
func TestHealth(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	assert.NoError(t, NewClient(ok.URL, nil, nil).Health(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.Error(t, NewClient(down.URL, nil, nil).Health(context.Background()))
}
