package analyze

import (
	"math/big"
)

// balanceAt reads an index-aligned balance slice, treating entries past
// the end as zero. RPC responses occasionally carry shorter balance
// arrays than account lists; that is not an error.
func balanceAt(balances []uint64, i int) uint64 {
	if i < 0 || i >= len(balances) {
		return 0
	}
	return balances[i]
}

// ResolveNativeDelta finds the account whose native SOL balance changed.
//
// With an expectedRecipient, only that address is considered: the first
// account key matching it is returned with its signed delta, whatever
// the sign. If no account matches, the sentinel is returned rather than
// falling back to a scan; an explicitly requested address must never be
// silently substituted with a different account.
//
// Without an expectedRecipient, the account with the largest strictly
// positive delta wins; ties keep the earliest index. If nothing
// increased, the sentinel is returned.
func ResolveNativeDelta(pre, post []uint64, keys []AccountKey, expectedRecipient string) NativeDelta {
	if expectedRecipient != "" {
		for i, key := range keys {
			if key.Address == expectedRecipient {
				return NativeDelta{
					AccountIndex: i,
					Lamports:     int64(balanceAt(post, i)) - int64(balanceAt(pre, i)),
				}
			}
		}
		return NativeDelta{AccountIndex: -1}
	}

	best := NativeDelta{AccountIndex: -1}
	for i := range keys {
		delta := int64(balanceAt(post, i)) - int64(balanceAt(pre, i))
		if delta > 0 && (best.AccountIndex < 0 || delta > best.Lamports) {
			best = NativeDelta{AccountIndex: i, Lamports: delta}
		}
	}
	return best
}

// tokenKey identifies a token balance entry within one transaction.
// Account index alone is not unique across mints.
type tokenKey struct {
	accountIndex int
	mint         string
}

// ResolveTokenDelta finds the token balance that changed.
//
// Pre-state balances are indexed by (accountIndex, mint); each
// post-state entry's delta is its raw amount minus the matching
// pre-state amount, or minus zero for first-time token accounts. Raw
// amounts are decimal strings and the subtraction is exact big-integer
// arithmetic, so large supplies never lose precision.
//
// With an expectedRecipient, the first post entry whose owner matches,
// or failing that whose account key address matches, is returned
// immediately regardless of delta sign; the caller gates on delta > 0
// before treating it as a receipt. Without one, the largest strictly
// positive delta wins (ties keep the first encountered); nil is
// returned when nothing increased, distinguishing "no token movement"
// from "an entry existed with delta zero".
//
// Decimals come from the post entry: a pre entry may not exist for a
// freshly created token account.
func ResolveTokenDelta(pre, post []TokenBalance, keys []AccountKey, expectedRecipient string) *TokenDelta {
	preAmounts := make(map[tokenKey]*big.Int, len(pre))
	for _, tb := range pre {
		preAmounts[tokenKey{tb.AccountIndex, tb.Mint}] = parseRawAmount(tb.RawAmount)
	}

	deltaFor := func(tb TokenBalance) *TokenDelta {
		delta := parseRawAmount(tb.RawAmount)
		if prev, ok := preAmounts[tokenKey{tb.AccountIndex, tb.Mint}]; ok {
			delta = new(big.Int).Sub(delta, prev)
		}
		return &TokenDelta{
			AccountIndex: tb.AccountIndex,
			Mint:         tb.Mint,
			Decimals:     tb.Decimals,
			Raw:          delta,
			Owner:        tb.Owner,
		}
	}

	if expectedRecipient != "" {
		for _, tb := range post {
			if tb.Owner == expectedRecipient {
				return deltaFor(tb)
			}
			if tb.AccountIndex >= 0 && tb.AccountIndex < len(keys) &&
				keys[tb.AccountIndex].Address == expectedRecipient {
				return deltaFor(tb)
			}
		}
		return nil
	}

	var best *TokenDelta
	for _, tb := range post {
		candidate := deltaFor(tb)
		if candidate.Raw.Sign() <= 0 {
			continue
		}
		if best == nil || candidate.Raw.Cmp(best.Raw) > 0 {
			best = candidate
		}
	}
	return best
}

// parseRawAmount parses a decimal smallest-unit string, treating
// anything unparseable (including empty) as zero.
func parseRawAmount(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}
