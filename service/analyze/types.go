package analyze

import (
	"math/big"
	"time"
)

// AccountKey is one entry in a transaction's ordered account list.
// Order matters: index 0 is conventionally the fee payer.
type AccountKey struct {
	Address  string
	Signer   bool
	Writable bool
}

// TokenBalance is a pre- or post-state SPL token balance for one account
// index. RawAmount is the smallest-unit amount as a decimal string; it is
// kept as a string so callers can do exact arithmetic regardless of token
// supply size.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string // may be empty if the RPC response omits it
	Decimals     uint8
	RawAmount    string
}

// Record is the domain view of a fetched transaction: everything the
// resolver needs, nothing RPC-specific. The solana package builds one of
// these from a GetTransaction result.
type Record struct {
	Signature string
	Slot      uint64
	BlockTime time.Time
	Fee       uint64 // lamports

	AccountKeys  []AccountKey
	PreBalances  []uint64
	PostBalances []uint64

	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance

	// SenderHint is the sender extracted from parsed instructions
	// (source/authority), empty when no instruction exposed one.
	SenderHint string

	// Memo is the transaction's memo text, if any.
	Memo string

	// Err is the on-chain failure message for failed transactions,
	// empty on success.
	Err string
}

// NativeDelta is the native-SOL resolution result. AccountIndex -1 with
// zero lamports is the "no movement" sentinel.
type NativeDelta struct {
	AccountIndex int
	Lamports     int64
}

// NoMovement reports whether the delta is the sentinel.
func (d NativeDelta) NoMovement() bool {
	return d.AccountIndex < 0
}

// TokenDelta is the token resolution result. A nil *TokenDelta means no
// token balances changed at all, which is distinct from a delta of zero
// on an existing entry.
type TokenDelta struct {
	AccountIndex int
	Mint         string
	Decimals     uint8
	Raw          *big.Int // signed smallest-unit change
	Owner        string
}

// Parties is the fallback sender/recipient guess. Either field may be
// empty. It is a positional heuristic, not verified against balances.
type Parties struct {
	Sender    string
	Recipient string
}
