package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/brojonat/recibo/service/analyze"
)

// Client fetches single transactions and converts them into the domain
// record the analyzer consumes.
type Client struct {
	rpc      RPCClient
	logger   *slog.Logger
	metrics  metricsRecorder
	endpoint string // RPC endpoint identifier for metrics (e.g., "mainnet", "devnet", rpc host)
	sleep    func(time.Duration)
}

// metricsRecorder is the subset of the metrics surface this client
// records to. Nil is allowed and disables recording.
type metricsRecorder interface {
	RecordRPCCall(method, status, endpoint string, duration float64)
	RecordRateLimitHit(endpoint string)
	RecordRPCRetry(method, reason string)
}

// NewClient creates a new Solana client. The endpoint parameter is used
// for metrics labeling (e.g., "mainnet", "devnet", or RPC hostname).
// If m is nil, no metrics will be recorded.
func NewClient(rpcClient RPCClient, endpoint string, m metricsRecorder, logger *slog.Logger) *Client {
	return &Client{
		rpc:      rpcClient,
		logger:   logger,
		metrics:  m,
		endpoint: endpoint,
		sleep:    time.Sleep,
	}
}

// FetchTransaction fetches one transaction by signature and converts it
// to the analyzer's record. A nil RPC result maps to ErrNotFound and a
// nil meta block to ErrMissingMetadata; both are terminal for this
// attempt.
func (c *Client) FetchTransaction(ctx context.Context, sig solana.Signature) (*analyze.Record, error) {
	result, err := c.getTransactionWithRetry(ctx, sig)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rpc: %w", err)
	}
	if result == nil {
		return nil, ErrNotFound
	}
	if result.Meta == nil {
		return nil, ErrMissingMetadata
	}

	tx, err := result.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	return recordFromResult(sig, result, tx), nil
}

// getTransactionWithRetry wraps the RPC call with the backoff policy:
// bounded attempts, longer sleeps on 429, and an immediate legacy-encoding
// retry when the node cannot serve the versioned request.
func (c *Client) getTransactionWithRetry(ctx context.Context, sig solana.Signature) (*rpc.GetTransactionResult, error) {
	var result *rpc.GetTransactionResult
	var err error

	maxVersion := uint64(0)
	const maxAttempts = 3
	for attempt := 0; attempt < maxAttempts; attempt++ {
		opts := &rpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			MaxSupportedTransactionVersion: &maxVersion,
		}
		start := time.Now()
		result, err = c.rpc.GetTransaction(ctx, sig, opts)
		duration := time.Since(start).Seconds()

		status := "success"
		if err != nil {
			status = "error"
		}
		if c.metrics != nil {
			c.metrics.RecordRPCCall("GetTransaction", status, c.endpoint, duration)
		}

		if err == nil || errors.Is(err, rpc.ErrNotFound) {
			return result, err
		}

		// Rate limiting gets a longer backoff than other failures.
		if strings.Contains(err.Error(), "429") {
			backoff := time.Duration(2<<uint(attempt)) * time.Second
			c.logger.WarnContext(ctx, "rate limited, sleeping before retry",
				"signature", sig.String(),
				"attempt", attempt+1,
				"backoff_seconds", backoff.Seconds(),
			)
			if c.metrics != nil {
				c.metrics.RecordRateLimitHit(c.endpoint)
				c.metrics.RecordRPCRetry("GetTransaction", "rate_limit")
			}
			if attempt < maxAttempts-1 {
				c.sleep(backoff)
			}
			continue
		}

		// Old transactions can fail versioned decoding; retry once without
		// version support.
		if strings.Contains(err.Error(), "expects '\"' or 'n', but found '{'") {
			c.logger.WarnContext(ctx, "could not parse as versioned tx, retrying as legacy",
				"signature", sig.String(),
			)
			if c.metrics != nil {
				c.metrics.RecordRPCRetry("GetTransaction", "parse_error")
			}

			legacyOpts := &rpc.GetTransactionOpts{
				Encoding: solana.EncodingBase64,
			}
			legacyStart := time.Now()
			result, err = c.rpc.GetTransaction(ctx, sig, legacyOpts)
			legacyDuration := time.Since(legacyStart).Seconds()

			legacyStatus := "success"
			if err != nil {
				legacyStatus = "error"
			}
			if c.metrics != nil {
				c.metrics.RecordRPCCall("GetTransaction", legacyStatus, c.endpoint, legacyDuration)
			}

			if err == nil || errors.Is(err, rpc.ErrNotFound) {
				return result, err
			}
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		c.logger.WarnContext(ctx, "failed to get transaction on attempt",
			"signature", sig.String(),
			"attempt", attempt+1,
			"error", err,
			"backoff_seconds", backoff.Seconds(),
		)
		if c.metrics != nil {
			c.metrics.RecordRPCRetry("GetTransaction", "timeout_or_error")
		}
		if attempt < maxAttempts-1 {
			c.sleep(backoff)
		}
	}

	return result, err
}

// recordFromResult converts the RPC result into the analyzer's record.
func recordFromResult(sig solana.Signature, result *rpc.GetTransactionResult, tx *solana.Transaction) *analyze.Record {
	meta := result.Meta
	msg := tx.Message

	rec := &analyze.Record{
		Signature:         sig.String(),
		Slot:              result.Slot,
		Fee:               meta.Fee,
		AccountKeys:       accountKeysFromMessage(msg),
		PreBalances:       meta.PreBalances,
		PostBalances:      meta.PostBalances,
		PreTokenBalances:  tokenBalancesToDomain(meta.PreTokenBalances),
		PostTokenBalances: tokenBalancesToDomain(meta.PostTokenBalances),
		SenderHint:        extractSenderHint(msg),
		Memo:              extractMemo(msg),
	}

	if result.BlockTime != nil {
		rec.BlockTime = result.BlockTime.Time()
	}
	if meta.Err != nil {
		rec.Err = fmt.Sprintf("transaction failed: %v", meta.Err)
	}

	return rec
}

// accountKeysFromMessage flattens the message's static account keys with
// signer/writable flags derived from the header. Keys are laid out as:
// writable signers, readonly signers, writable non-signers, readonly
// non-signers.
func accountKeysFromMessage(msg solana.Message) []analyze.AccountKey {
	numRequired := int(msg.Header.NumRequiredSignatures)
	numReadonlySigned := int(msg.Header.NumReadonlySignedAccounts)
	numReadonlyUnsigned := int(msg.Header.NumReadonlyUnsignedAccounts)
	total := len(msg.AccountKeys)

	keys := make([]analyze.AccountKey, total)
	for i, pk := range msg.AccountKeys {
		signer := i < numRequired
		var writable bool
		if signer {
			writable = i < numRequired-numReadonlySigned
		} else {
			writable = i < total-numReadonlyUnsigned
		}
		keys[i] = analyze.AccountKey{
			Address:  pk.String(),
			Signer:   signer,
			Writable: writable,
		}
	}
	return keys
}

// tokenBalancesToDomain converts RPC token balances, skipping entries
// without an amount block.
func tokenBalancesToDomain(balances []rpc.TokenBalance) []analyze.TokenBalance {
	if len(balances) == 0 {
		return nil
	}
	out := make([]analyze.TokenBalance, 0, len(balances))
	for _, tb := range balances {
		if tb.UiTokenAmount == nil {
			continue
		}
		domain := analyze.TokenBalance{
			AccountIndex: int(tb.AccountIndex),
			Mint:         tb.Mint.String(),
			Decimals:     tb.UiTokenAmount.Decimals,
			RawAmount:    tb.UiTokenAmount.Amount,
		}
		if tb.Owner != nil {
			domain.Owner = tb.Owner.String()
		}
		out = append(out, domain)
	}
	return out
}
