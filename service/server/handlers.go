package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	solanago "github.com/gagliardetto/solana-go"

	"github.com/brojonat/recibo/service/analyze"
	"github.com/brojonat/recibo/service/config"
	"github.com/brojonat/recibo/service/metrics"
	"github.com/brojonat/recibo/service/solana"
)

const maxRequestBodySize = 1 << 20 // 1MB, far beyond any analyze request

// TransactionFetcher fetches one transaction record by signature. The
// solana.Client satisfies this; tests substitute a mock.
type TransactionFetcher interface {
	FetchTransaction(ctx context.Context, sig solanago.Signature) (*analyze.Record, error)
}

// AnalyzeRequest is the analyze API request body. Input is a raw base58
// signature or an explorer URL containing one.
type AnalyzeRequest struct {
	Input             string `json:"input"`
	ExpectedRecipient string `json:"expected_recipient,omitempty"`
}

// AssetResponse is the classified movement in the API response. Amount
// is in smallest units as a decimal string; Decimals is absent for
// unknown movements.
type AssetResponse struct {
	Kind     string `json:"kind"`
	Amount   string `json:"amount,omitempty"`
	Mint     string `json:"mint,omitempty"`
	Decimals *uint8 `json:"decimals,omitempty"`
}

// AnalyzeResponse is the analyze API response body.
type AnalyzeResponse struct {
	Signature        string        `json:"signature"`
	ExplorerLink     string        `json:"explorer_link"`
	Slot             uint64        `json:"slot"`
	BlockTime        *time.Time    `json:"block_time,omitempty"`
	FeeLamports      uint64        `json:"fee_lamports"`
	SenderAddress    string        `json:"sender_address,omitempty"`
	RecipientAddress string        `json:"recipient_address,omitempty"`
	Asset            AssetResponse `json:"asset"`
	Memo             string        `json:"memo,omitempty"`
	TransactionError string        `json:"transaction_error,omitempty"`
}

// fetchAndAnalyze runs the full pipeline shared by the API and the
// receipt page: extract signature, fetch, build the report.
func fetchAndAnalyze(ctx context.Context, fetcher TransactionFetcher, cfg *config.Config, input, expectedRecipient string) (analyze.Report, error) {
	sig, err := solana.ExtractSignature(input)
	if err != nil {
		return analyze.Report{}, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	rec, err := fetcher.FetchTransaction(fetchCtx, sig)
	if err != nil {
		return analyze.Report{}, err
	}

	link := solana.ExplorerTxURL(rec.Signature, cfg.SolanaNetwork)
	return analyze.BuildReport(*rec, expectedRecipient, link), nil
}

// handleAnalyze returns a handler for POST /api/v1/analyze.
func handleAnalyze(fetcher TransactionFetcher, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		report, err := fetchAndAnalyze(r.Context(), fetcher, cfg, req.Input, req.ExpectedRecipient)
		if err != nil {
			writeAnalyzeError(w, err, m, logger)
			return
		}

		if m != nil {
			m.RecordAnalysis(report.Asset.Kind(), "success")
		}
		logger.Info("analyzed transaction",
			"signature", report.Signature,
			"kind", report.Asset.Kind(),
		)
		writeJSON(w, ReportToResponse(report), http.StatusOK)
	})
}

// writeAnalyzeError maps the error taxonomy onto HTTP statuses:
// validation 400, not found 404, missing metadata 422, transport 502.
func writeAnalyzeError(w http.ResponseWriter, err error, m *metrics.Metrics, logger *slog.Logger) {
	if m != nil {
		m.RecordAnalysis("none", "error")
	}
	switch {
	case errors.Is(err, solana.ErrInvalidSignature):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, solana.ErrNotFound):
		writeError(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, solana.ErrMissingMetadata):
		writeError(w, "transaction has no metadata", http.StatusUnprocessableEntity)
	default:
		logger.Error("failed to fetch transaction", "error", err)
		writeError(w, "failed to fetch transaction", http.StatusBadGateway)
	}
}

// ReportToResponse builds the wire DTO from a report. The asset variant
// decides which fields appear. Exported because the CLI renders the same
// shape when talking to the RPC node directly.
func ReportToResponse(report analyze.Report) AnalyzeResponse {
	resp := AnalyzeResponse{
		Signature:        report.Signature,
		ExplorerLink:     report.ExplorerLink,
		Slot:             report.Slot,
		FeeLamports:      report.Fee,
		SenderAddress:    report.Sender,
		RecipientAddress: report.Recipient,
		Memo:             report.Memo,
		TransactionError: report.Err,
		Asset:            AssetResponse{Kind: report.Asset.Kind()},
	}
	if !report.BlockTime.IsZero() {
		t := report.BlockTime
		resp.BlockTime = &t
	}

	switch asset := report.Asset.(type) {
	case analyze.NativeAsset:
		resp.Asset.Amount = strconv.FormatUint(asset.Lamports, 10)
		decimals := uint8(9)
		resp.Asset.Decimals = &decimals
	case analyze.TokenAsset:
		resp.Asset.Amount = asset.Raw.String()
		resp.Asset.Mint = asset.Mint
		decimals := asset.Decimals
		resp.Asset.Decimals = &decimals
	}
	return resp
}

// handleHealth returns a trivial liveness handler.
func handleHealth() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
