package server

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/brojonat/recibo/service/config"
	"github.com/brojonat/recibo/service/metrics"
	"github.com/brojonat/recibo/service/receipt"
	"github.com/brojonat/recibo/service/solana"
)

//go:embed templates/*.html
var templatesFS embed.FS

// TemplateRenderer holds parsed HTML templates
type TemplateRenderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewTemplateRenderer creates a new template renderer from embedded files
func NewTemplateRenderer(logger *slog.Logger) (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Render renders a template with the given data
func (tr *TemplateRenderer) Render(w http.ResponseWriter, name string, data interface{}) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tr.templates.ExecuteTemplate(w, name, data)
}

// handleIndexPage serves the input form.
func handleIndexPage(renderer *TemplateRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := renderer.Render(w, "index.html", nil); err != nil {
			renderer.logger.Error("failed to render template", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

// handleReceiptPage runs the analysis for a submitted form and responds
// with the printable receipt document.
func handleReceiptPage(fetcher TransactionFetcher, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		input := r.FormValue("input")
		expectedRecipient := r.FormValue("expected_recipient")

		report, err := fetchAndAnalyze(r.Context(), fetcher, cfg, input, expectedRecipient)
		if err != nil {
			if m != nil {
				m.RecordAnalysis("none", "error")
			}
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, solana.ErrInvalidSignature):
				status = http.StatusBadRequest
			case errors.Is(err, solana.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, solana.ErrMissingMetadata):
				status = http.StatusUnprocessableEntity
			default:
				logger.Error("failed to fetch transaction", "error", err)
				err = errors.New("failed to fetch transaction")
			}
			http.Error(w, err.Error(), status)
			return
		}

		doc := receipt.New(receipt.Params{
			Report:        report,
			Network:       cfg.SolanaNetwork,
			InvoiceNumber: r.FormValue("invoice_number"),
			Description:   r.FormValue("description"),
		})

		if m != nil {
			m.RecordAnalysis(report.Asset.Kind(), "success")
			m.RecordReceiptGenerated("html")
		}
		logger.Info("generated receipt",
			"signature", report.Signature,
			"document_id", doc.ID,
		)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := doc.Render(w); err != nil {
			logger.Error("failed to render receipt", "error", err)
		}
	}
}
