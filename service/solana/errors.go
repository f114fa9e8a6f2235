package solana

import "errors"

// Terminal errors for a single fetch attempt. None of these are retried
// automatically; the caller surfaces them and waits for the user to try
// again.
var (
	// ErrInvalidSignature means the input was neither a base58 transaction
	// signature nor a recognized explorer URL. No RPC call is made.
	ErrInvalidSignature = errors.New("input is not a transaction signature or explorer URL")

	// ErrNotFound means the RPC node returned no result for the signature.
	ErrNotFound = errors.New("transaction not found")

	// ErrMissingMetadata means the transaction exists but its meta block
	// is null, so there are no balances to analyze.
	ErrMissingMetadata = errors.New("transaction has no metadata")
)
