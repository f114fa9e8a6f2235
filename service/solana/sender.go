package solana

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Well-known Solana program IDs
var (
	// SystemProgramID is the native SOL transfer program (32 zero bytes,
	// base58 "11111111111111111111111111111111").
	SystemProgramID = solana.SystemProgramID

	// TokenProgramID is the SPL Token program
	TokenProgramID = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// Token2022ProgramID is the Token Extensions program (Token-2022)
	Token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// MemoProgramIDSPL is the SPL Memo program (most common)
	MemoProgramIDSPL = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")

	// MemoProgramIDLegacy is the legacy memo program (v1)
	MemoProgramIDLegacy = solana.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")
)

// System Program instruction types
const (
	SystemProgramTransferInstruction = uint32(2)
)

// Token Program instruction types
const (
	TokenProgramTransferInstruction        = uint8(3)
	TokenProgramTransferCheckedInstruction = uint8(12)
)

// extractSenderHint walks the compiled instructions in order and returns
// the first sender a transfer instruction exposes: the source account of
// a System Transfer, or the authority of an SPL Token Transfer /
// TransferChecked. An empty string means no instruction exposed one and
// the caller should fall back to positional inference. Malformed or
// unrelated instructions are skipped explicitly, never recovered from.
func extractSenderHint(msg solana.Message) string {
	for _, instruction := range msg.Instructions {
		if int(instruction.ProgramIDIndex) >= len(msg.AccountKeys) {
			continue
		}
		programID := msg.AccountKeys[instruction.ProgramIDIndex]

		switch {
		case programID.Equals(SystemProgramID):
			if addr, ok := systemTransferSource(instruction, msg.AccountKeys); ok {
				return addr
			}
		case programID.Equals(TokenProgramID), programID.Equals(Token2022ProgramID):
			if addr, ok := tokenTransferAuthority(instruction, msg.AccountKeys); ok {
				return addr
			}
		}
	}
	return ""
}

// systemTransferSource extracts the source address from a System Program
// Transfer instruction.
//
// Instruction data layout:
//
//	[0..4]  = instruction type (u32, 2 = Transfer)
//	[4..12] = lamports (u64)
//
// Account layout: [from, to].
func systemTransferSource(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey) (string, bool) {
	if len(instruction.Data) < 12 {
		return "", false
	}
	if binary.LittleEndian.Uint32(instruction.Data[0:4]) != SystemProgramTransferInstruction {
		return "", false
	}
	if len(instruction.Accounts) < 1 {
		return "", false
	}
	sourceIndex := instruction.Accounts[0]
	if int(sourceIndex) >= len(accountKeys) {
		return "", false
	}
	return accountKeys[sourceIndex].String(), true
}

// tokenTransferAuthority extracts the authority (the wallet that signed
// the transfer) from an SPL Token transfer instruction.
//
// Transfer account layout: [source, destination, authority].
// TransferChecked account layout: [source, mint, destination, authority].
func tokenTransferAuthority(instruction solana.CompiledInstruction, accountKeys []solana.PublicKey) (string, bool) {
	if len(instruction.Data) == 0 {
		return "", false
	}

	var authorityPos int
	switch instruction.Data[0] {
	case TokenProgramTransferInstruction:
		if len(instruction.Data) < 9 {
			return "", false
		}
		authorityPos = 2
	case TokenProgramTransferCheckedInstruction:
		if len(instruction.Data) < 10 {
			return "", false
		}
		authorityPos = 3
	default:
		return "", false
	}

	if len(instruction.Accounts) <= authorityPos {
		return "", false
	}
	authorityIndex := instruction.Accounts[authorityPos]
	if int(authorityIndex) >= len(accountKeys) {
		return "", false
	}
	return accountKeys[authorityIndex].String(), true
}

// extractMemo returns the text of the first Memo Program instruction in
// the message, or empty when there is none.
func extractMemo(msg solana.Message) string {
	for _, instruction := range msg.Instructions {
		if int(instruction.ProgramIDIndex) >= len(msg.AccountKeys) {
			continue
		}
		programID := msg.AccountKeys[instruction.ProgramIDIndex]
		if programID.Equals(MemoProgramIDSPL) || programID.Equals(MemoProgramIDLegacy) {
			if memo := parseMemo(instruction.Data); memo != "" {
				return memo
			}
		}
	}
	return ""
}

// parseMemo extracts the memo text from a Memo Program instruction.
// Memos are raw UTF-8 bytes, though some senders base64-encode them.
func parseMemo(data []byte) string {
	memo := string(data)
	if decoded, err := base64.StdEncoding.DecodeString(memo); err == nil {
		if isPrintable(decoded) {
			return string(decoded)
		}
	}
	return memo
}

// isPrintable rejects byte strings with embedded NULs, which indicates
// the base64 decode produced binary garbage rather than text.
func isPrintable(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return false
		}
	}
	return true
}
