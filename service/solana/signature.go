package solana

import (
	"fmt"
	"regexp"

	"github.com/gagliardetto/solana-go"
)

// Solana transaction signatures are 84-88 base58 characters (the base58
// alphabet excludes 0, O, I and l).
var (
	rawSignatureRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{84,88}$`)

	// Known explorer URL shapes carrying a signature in the /tx/ path.
	explorerURLRegex = regexp.MustCompile(
		`(?:explorer\.solana\.com|solscan\.io|solana\.fm)/tx/([1-9A-HJ-NP-Za-km-z]{84,88})`)
)

// ExtractSignature accepts either a raw base58 transaction signature or
// an explorer URL containing one and returns the parsed signature.
// Anything else yields ErrInvalidSignature and blocks the fetch.
func ExtractSignature(input string) (solana.Signature, error) {
	candidate := input
	if !rawSignatureRegex.MatchString(candidate) {
		m := explorerURLRegex.FindStringSubmatch(input)
		if m == nil {
			return solana.Signature{}, fmt.Errorf("%w: %q", ErrInvalidSignature, input)
		}
		candidate = m[1]
	}

	sig, err := solana.SignatureFromBase58(candidate)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %q", ErrInvalidSignature, input)
	}
	return sig, nil
}

// ExplorerTxURL builds the canonical explorer link for a signature.
// Non-mainnet networks get a cluster query parameter.
func ExplorerTxURL(signature, network string) string {
	url := "https://explorer.solana.com/tx/" + signature
	if network != "" && network != "mainnet" {
		url += "?cluster=" + network
	}
	return url
}
