package analyze

// InferParties guesses the counterparties from account ordering alone:
// the fee payer at index 0 is the sender, and the first writable account
// after it is the recipient. This is a positional fallback for
// transactions the delta resolver could not classify (multi-hop swaps,
// program-internal transfers); it is never verified against balance
// movement and callers must not treat it as authoritative.
func InferParties(keys []AccountKey) Parties {
	var parties Parties
	if len(keys) == 0 {
		return parties
	}
	parties.Sender = keys[0].Address
	for _, key := range keys[1:] {
		if key.Writable {
			parties.Recipient = key.Address
			break
		}
	}
	return parties
}
