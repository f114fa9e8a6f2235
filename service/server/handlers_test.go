package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/recibo/service/analyze"
	"github.com/brojonat/recibo/service/config"
	"github.com/brojonat/recibo/service/solana"
)

const testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"

// mockFetcher implements TransactionFetcher with a canned record or error.
type mockFetcher struct {
	rec   *analyze.Record
	err   error
	calls int
}

func (m *mockFetcher) FetchTransaction(ctx context.Context, sig solanago.Signature) (*analyze.Record, error) {
	m.calls++
	return m.rec, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		SolanaRPCURL:  "https://api.mainnet-beta.solana.com",
		SolanaNetwork: "mainnet",
		FetchTimeout:  5 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tokenPaymentRecord() *analyze.Record {
	return &analyze.Record{
		Signature: testSignature,
		Slot:      100,
		BlockTime: time.Unix(1_700_000_000, 0).UTC(),
		Fee:       5000,
		AccountKeys: []analyze.AccountKey{
			{Address: "A", Signer: true, Writable: true},
			{Address: "B", Writable: true},
			{Address: "C", Writable: true},
		},
		PreBalances:  []uint64{1000, 500, 0},
		PostBalances: []uint64{995, 500, 0},
		PostTokenBalances: []analyze.TokenBalance{
			{AccountIndex: 2, Mint: "M", Owner: "C", Decimals: 6, RawAmount: "5000000"},
		},
	}
}

func postAnalyze(t *testing.T, fetcher TransactionFetcher, body AnalyzeRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handleAnalyze(fetcher, testConfig(), nil, testLogger()).ServeHTTP(rec, req)
	return rec
}

// TestHandleAnalyze_TokenReceipt tests the happy path response shape.
func TestHandleAnalyze_TokenReceipt(t *testing.T) {
	fetcher := &mockFetcher{rec: tokenPaymentRecord()}

	rec := postAnalyze(t, fetcher, AnalyzeRequest{Input: testSignature})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, testSignature, resp.Signature)
	assert.Equal(t, "https://explorer.solana.com/tx/"+testSignature, resp.ExplorerLink)
	assert.Equal(t, uint64(100), resp.Slot)
	assert.Equal(t, uint64(5000), resp.FeeLamports)
	assert.Equal(t, "token", resp.Asset.Kind)
	assert.Equal(t, "5000000", resp.Asset.Amount)
	assert.Equal(t, "M", resp.Asset.Mint)
	require.NotNil(t, resp.Asset.Decimals)
	assert.Equal(t, uint8(6), *resp.Asset.Decimals)
	assert.Equal(t, "C", resp.RecipientAddress)
}

// TestHandleAnalyze_ExplorerURLInput tests that explorer URLs are
// accepted as input.
func TestHandleAnalyze_ExplorerURLInput(t *testing.T) {
	fetcher := &mockFetcher{rec: tokenPaymentRecord()}

	rec := postAnalyze(t, fetcher, AnalyzeRequest{
		Input: "https://solscan.io/tx/" + testSignature,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fetcher.calls)
}

// TestHandleAnalyze_ValidationError tests that unrecognizable input is
// rejected before any RPC call.
func TestHandleAnalyze_ValidationError(t *testing.T) {
	fetcher := &mockFetcher{rec: tokenPaymentRecord()}

	rec := postAnalyze(t, fetcher, AnalyzeRequest{Input: "not a signature"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, fetcher.calls, "validation errors must not reach the RPC layer")
}

// TestHandleAnalyze_ErrorMapping tests the error taxonomy to status code
// mapping.
func TestHandleAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", solana.ErrNotFound, http.StatusNotFound},
		{"missing metadata", solana.ErrMissingMetadata, http.StatusUnprocessableEntity},
		{"transport", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &mockFetcher{err: tc.err}
			rec := postAnalyze(t, fetcher, AnalyzeRequest{Input: testSignature})

			assert.Equal(t, tc.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

// TestHandleAnalyze_TransportErrorIsGeneric tests that internal error
// detail is not leaked to the client.
func TestHandleAnalyze_TransportErrorIsGeneric(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("dial tcp 10.0.0.1: connection refused")}

	rec := postAnalyze(t, fetcher, AnalyzeRequest{Input: testSignature})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

// TestHandleAnalyze_UnknownMovement tests the fallback response for a
// transaction with no positive deltas.
func TestHandleAnalyze_UnknownMovement(t *testing.T) {
	record := tokenPaymentRecord()
	record.PostTokenBalances = nil

	fetcher := &mockFetcher{rec: record}
	rec := postAnalyze(t, fetcher, AnalyzeRequest{Input: testSignature})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unknown", resp.Asset.Kind)
	assert.Empty(t, resp.Asset.Amount)
	assert.Nil(t, resp.Asset.Decimals)
	// Party inference still fills the counterparties.
	assert.Equal(t, "A", resp.SenderAddress)
	assert.Equal(t, "B", resp.RecipientAddress)
}

// TestHandleReceiptPage tests the form-to-receipt flow.
func TestHandleReceiptPage(t *testing.T) {
	fetcher := &mockFetcher{rec: tokenPaymentRecord()}

	form := url.Values{}
	form.Set("input", testSignature)
	form.Set("invoice_number", "INV-7")
	form.Set("description", "web design")

	req := httptest.NewRequest(http.MethodPost, "/receipt", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	handleReceiptPage(fetcher, testConfig(), nil, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, testSignature)
	assert.Contains(t, html, "INV-7")
	assert.Contains(t, html, "web design")
	assert.Contains(t, html, "5.0")
}

// TestHandleHealth tests the liveness endpoint.
func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handleHealth().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
