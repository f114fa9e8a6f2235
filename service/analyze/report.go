package analyze

import (
	"math/big"
	"time"
)

// Asset is the classified movement in a report. It is a closed set:
// NativeAsset, TokenAsset, or UnknownAsset. Each case carries only the
// fields that are meaningful for it, so presentation code can never read
// a token mint off a native transfer.
type Asset interface {
	// Kind returns the wire name of the variant: "native", "token" or
	// "unknown".
	Kind() string
}

// NativeAsset is a received native SOL amount.
type NativeAsset struct {
	Lamports uint64
}

func (NativeAsset) Kind() string { return "native" }

// TokenAsset is a received SPL token amount.
type TokenAsset struct {
	Mint     string
	Decimals uint8
	Raw      *big.Int
	Owner    string // owning wallet of the token account, if known
}

func (TokenAsset) Kind() string { return "token" }

// UnknownAsset means the resolver found no positive movement; the
// report's parties are positional guesses only.
type UnknownAsset struct{}

func (UnknownAsset) Kind() string { return "unknown" }

// Report is the analysis result handed to presentation. It is built
// once per fetch and replaced wholesale on the next one.
type Report struct {
	Signature    string
	ExplorerLink string
	Slot         uint64
	BlockTime    time.Time
	Fee          uint64 // lamports
	Sender       string
	Recipient    string
	Asset        Asset
	Memo         string // transaction memo text, if any
	Err          string // on-chain failure message, empty on success
}

// BuildReport classifies a transaction record into a payment report.
//
// The token path is evaluated before the native path: stable-token
// payments are the common case, and a transaction moving both must be
// reported as the token receipt. Both paths require a strictly positive
// delta; a net outflow or a zero-change swap on the inspected address is
// never reported as a receipt. When neither path finds movement the
// asset is unknown and the counterparties fall back to positional
// inference.
//
// The sender is refined from the record's instruction-derived hint when
// one exists, otherwise the positional guess is used.
func BuildReport(rec Record, expectedRecipient, explorerLink string) Report {
	report := Report{
		Signature:    rec.Signature,
		ExplorerLink: explorerLink,
		Slot:         rec.Slot,
		BlockTime:    rec.BlockTime,
		Fee:          rec.Fee,
		Memo:         rec.Memo,
		Err:          rec.Err,
	}

	parties := InferParties(rec.AccountKeys)
	report.Sender = parties.Sender
	if rec.SenderHint != "" {
		report.Sender = rec.SenderHint
	}

	tokenDelta := ResolveTokenDelta(rec.PreTokenBalances, rec.PostTokenBalances, rec.AccountKeys, expectedRecipient)
	if tokenDelta != nil && tokenDelta.Raw.Sign() > 0 {
		report.Asset = TokenAsset{
			Mint:     tokenDelta.Mint,
			Decimals: tokenDelta.Decimals,
			Raw:      tokenDelta.Raw,
			Owner:    tokenDelta.Owner,
		}
		report.Recipient = tokenRecipient(tokenDelta, rec.AccountKeys, expectedRecipient)
		return report
	}

	nativeDelta := ResolveNativeDelta(rec.PreBalances, rec.PostBalances, rec.AccountKeys, expectedRecipient)
	if !nativeDelta.NoMovement() && nativeDelta.Lamports > 0 {
		report.Asset = NativeAsset{Lamports: uint64(nativeDelta.Lamports)}
		if expectedRecipient != "" {
			report.Recipient = expectedRecipient
		} else {
			report.Recipient = rec.AccountKeys[nativeDelta.AccountIndex].Address
		}
		return report
	}

	report.Asset = UnknownAsset{}
	report.Recipient = parties.Recipient
	return report
}

// tokenRecipient picks the recipient address for a token receipt: the
// explicit recipient when one was requested, else the token account's
// owner, else the address at the matched account index.
func tokenRecipient(delta *TokenDelta, keys []AccountKey, expectedRecipient string) string {
	if expectedRecipient != "" {
		return expectedRecipient
	}
	if delta.Owner != "" {
		return delta.Owner
	}
	if delta.AccountIndex >= 0 && delta.AccountIndex < len(keys) {
		return keys[delta.AccountIndex].Address
	}
	return ""
}
