// Package receipt builds the payment-confirmation document from an
// analysis report plus user-supplied invoice fields, and renders it as a
// self-contained printable HTML page (print-to-PDF is the export path).
package receipt

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/brojonat/recibo/service/analyze"
)

//go:embed templates/*.html
var templatesFS embed.FS

var receiptTemplate = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Receipt is the display model of the confirmation document. It is
// derived once from a report and never mutated; a new analysis produces
// a new receipt.
type Receipt struct {
	ID          string
	GeneratedAt time.Time

	// Transaction details
	Signature    string
	Slot         uint64
	BlockTime    time.Time
	FeeSOL       string
	ExplorerLink string
	Network      string

	// Received funds
	AssetKind string // "native", "token" or "unknown"
	Amount    string // formatted display amount, empty for unknown
	Mint      string // token receipts only
	Sender    string
	Recipient string

	// Invoice block (user-supplied, optional)
	InvoiceNumber string
	Description   string

	// Technical details
	Memo       string
	TxErr      string // on-chain failure message, if any
	QRCodeData string // base64 PNG of the explorer link, may be empty
}

// Params are the inputs to New. Formatter defaults to DecimalFormatter.
type Params struct {
	Report        analyze.Report
	Network       string
	InvoiceNumber string
	Description   string
	Formatter     AmountFormatter
}

// New builds a receipt from an analysis report. The QR code is
// best-effort: if generation fails the receipt simply has none.
func New(p Params) Receipt {
	f := p.Formatter
	if f == nil {
		f = DecimalFormatter{}
	}

	r := Receipt{
		ID:            uuid.New().String(),
		GeneratedAt:   time.Now().UTC(),
		Signature:     p.Report.Signature,
		Slot:          p.Report.Slot,
		BlockTime:     p.Report.BlockTime,
		FeeSOL:        FormatLamports(f, p.Report.Fee),
		ExplorerLink:  p.Report.ExplorerLink,
		Network:       p.Network,
		AssetKind:     p.Report.Asset.Kind(),
		Sender:        p.Report.Sender,
		Recipient:     p.Report.Recipient,
		InvoiceNumber: p.InvoiceNumber,
		Description:   p.Description,
		Memo:          p.Report.Memo,
		TxErr:         p.Report.Err,
	}

	switch asset := p.Report.Asset.(type) {
	case analyze.NativeAsset:
		r.Amount = f.FormatAmount(new(big.Int).SetUint64(asset.Lamports), solDecimals) + " SOL"
	case analyze.TokenAsset:
		r.Amount = f.FormatAmount(asset.Raw, asset.Decimals)
		r.Mint = asset.Mint
	}

	if p.Report.ExplorerLink != "" {
		if qr, err := generateQRCode(p.Report.ExplorerLink); err == nil {
			r.QRCodeData = qr
		}
	}

	return r
}

// Render writes the printable HTML document.
func (r Receipt) Render(w io.Writer) error {
	if err := receiptTemplate.ExecuteTemplate(w, "receipt.html", r); err != nil {
		return fmt.Errorf("failed to render receipt: %w", err)
	}
	return nil
}

// generateQRCode creates a QR code image and returns it as base64-encoded
// PNG for embedding in the document.
func generateQRCode(data string) (string, error) {
	qr, err := qrcode.New(data, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code as PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
