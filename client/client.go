// Package client is the HTTP client for the recibo service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Asset is the classified movement in an analysis report.
type Asset struct {
	Kind     string `json:"kind"` // "native", "token" or "unknown"
	Amount   string `json:"amount,omitempty"`
	Mint     string `json:"mint,omitempty"`
	Decimals *uint8 `json:"decimals,omitempty"`
}

// AnalysisReport mirrors the server's analyze response.
type AnalysisReport struct {
	Signature        string     `json:"signature"`
	ExplorerLink     string     `json:"explorer_link"`
	Slot             uint64     `json:"slot"`
	BlockTime        *time.Time `json:"block_time,omitempty"`
	FeeLamports      uint64     `json:"fee_lamports"`
	SenderAddress    string     `json:"sender_address,omitempty"`
	RecipientAddress string     `json:"recipient_address,omitempty"`
	Asset            Asset      `json:"asset"`
	Memo             string     `json:"memo,omitempty"`
	TransactionError string     `json:"transaction_error,omitempty"`
}

// Client is the HTTP client for the recibo service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new service client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Analyze asks the server to fetch and analyze a transaction. Input is a
// raw base58 signature or an explorer URL containing one.
func (c *Client) Analyze(ctx context.Context, input, expectedRecipient string) (*AnalysisReport, error) {
	reqBody := map[string]string{
		"input": input,
	}
	if expectedRecipient != "" {
		reqBody["expected_recipient"] = expectedRecipient
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyze failed: %s", readErrorMessage(resp))
	}

	var report AnalysisReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &report, nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: status %d", resp.StatusCode)
	}
	return nil
}

// readErrorMessage extracts the server's error field, falling back to
// the HTTP status when the body is not the expected shape.
func readErrorMessage(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
