package solana

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

// TestSystemProgramID pins the constant to the on-chain System Program
// address, which base58-encodes 32 zero bytes.
func TestSystemProgramID(t *testing.T) {
	assert.Equal(t, solana.SystemProgramID, SystemProgramID)
	assert.Equal(t, "11111111111111111111111111111111", SystemProgramID.String())
}

// TestExtractSenderHint_SystemTransfer tests source extraction from a
// System Program transfer.
func TestExtractSenderHint_SystemTransfer(t *testing.T) {
	tx := solTransferTransaction(1_000_000)

	sender := extractSenderHint(tx.Message)

	assert.Equal(t, testSender.String(), sender)
}

// TestExtractSenderHint_SponsoredTransfer tests a relayed transfer where
// the fee payer at index 0 is not the source. The instruction keys the
// library's System Program address and must still yield the real source,
// not the fee payer.
func TestExtractSenderHint_SponsoredTransfer(t *testing.T) {
	feePayer := solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	source := testSender
	dest := testRecipient

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], SystemProgramTransferInstruction)
	binary.LittleEndian.PutUint64(data[4:12], 1_000_000)

	msg := solana.Message{
		AccountKeys: []solana.PublicKey{feePayer, source, dest, solana.SystemProgramID},
		Instructions: []solana.CompiledInstruction{
			{
				ProgramIDIndex: 3,
				Accounts:       []uint16{1, 2},
				Data:           data,
			},
		},
	}

	assert.Equal(t, source.String(), extractSenderHint(msg))
}

// TestExtractSenderHint_TokenTransferChecked tests authority extraction
// from a TransferChecked instruction.
func TestExtractSenderHint_TokenTransferChecked(t *testing.T) {
	source := solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	dest := testRecipient
	authority := testSender

	data := make([]byte, 10)
	data[0] = TokenProgramTransferCheckedInstruction
	binary.LittleEndian.PutUint64(data[1:9], 5_000_000)
	data[9] = 6 // decimals

	msg := solana.Message{
		AccountKeys: []solana.PublicKey{source, mint, dest, authority, TokenProgramID},
		Instructions: []solana.CompiledInstruction{
			{
				ProgramIDIndex: 4,
				Accounts:       []uint16{0, 1, 2, 3},
				Data:           data,
			},
		},
	}

	assert.Equal(t, authority.String(), extractSenderHint(msg))
}

// TestExtractSenderHint_TokenTransfer tests authority extraction from a
// plain Transfer instruction (authority at account position 2).
func TestExtractSenderHint_TokenTransfer(t *testing.T) {
	source := solana.MustPublicKeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	dest := testRecipient
	authority := testSender

	data := make([]byte, 9)
	data[0] = TokenProgramTransferInstruction
	binary.LittleEndian.PutUint64(data[1:9], 5_000_000)

	msg := solana.Message{
		AccountKeys: []solana.PublicKey{source, dest, authority, TokenProgramID},
		Instructions: []solana.CompiledInstruction{
			{
				ProgramIDIndex: 3,
				Accounts:       []uint16{0, 1, 2},
				Data:           data,
			},
		},
	}

	assert.Equal(t, authority.String(), extractSenderHint(msg))
}

// TestExtractSenderHint_NoTransferInstructions tests the explicit
// fall-through: unrelated or malformed instructions produce no hint.
func TestExtractSenderHint_NoTransferInstructions(t *testing.T) {
	msg := solana.Message{
		AccountKeys: []solana.PublicKey{testSender, SystemProgramID},
		Instructions: []solana.CompiledInstruction{
			{ProgramIDIndex: 1, Accounts: []uint16{0}, Data: []byte{9, 9}}, // truncated data
			{ProgramIDIndex: 9, Accounts: []uint16{0}},                     // out-of-range program index
		},
	}

	assert.Empty(t, extractSenderHint(msg))
}

// TestParseMemo tests plain and base64-encoded memo payloads.
func TestParseMemo(t *testing.T) {
	assert.Equal(t, "invoice 42", parseMemo([]byte("invoice 42")))

	// "aGVsbG8=" is base64 for "hello"; decodable memos are decoded.
	assert.Equal(t, "hello", parseMemo([]byte("aGVsbG8=")))
}
