package receipt

import (
	"math/big"
	"strings"
)

// AmountFormatter converts raw smallest-unit amounts into display
// strings. It is injected into receipt construction so the analysis core
// stays free of locale and formatting concerns, and so tests can pin the
// output.
type AmountFormatter interface {
	FormatAmount(raw *big.Int, decimals uint8) string
}

// DecimalFormatter is the default AmountFormatter: exact decimal-point
// scaling with trailing zeros trimmed down to a single fractional digit
// ("5000000" at 6 decimals renders as "5.0").
type DecimalFormatter struct{}

func (DecimalFormatter) FormatAmount(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}

	neg := raw.Sign() < 0
	abs := new(big.Int).Abs(raw)

	digits := abs.String()
	var whole, frac string
	if decimals == 0 {
		whole = digits
	} else {
		d := int(decimals)
		if len(digits) <= d {
			digits = strings.Repeat("0", d-len(digits)+1) + digits
		}
		whole = digits[:len(digits)-d]
		frac = strings.TrimRight(digits[len(digits)-d:], "0")
		if frac == "" {
			frac = "0"
		}
	}

	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// solDecimals is the native decimal scale (lamports per SOL).
const solDecimals = 9

// FormatLamports renders a lamport amount as SOL using the formatter.
func FormatLamports(f AmountFormatter, lamports uint64) string {
	return f.FormatAmount(new(big.Int).SetUint64(lamports), solDecimals)
}
