package render

import (
	"fmt"
	"io"
	"roadbook-service/internal/domain"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Core PDF fonts are cp1252; these runes have no glyph there.
var pdfReplacer = strings.NewReplacer("→", "->", "≤", "<=", "’", "'")

// WritePDF lays out the itinerary on A4 pages with 2 cm margins, one page
// per day.
func WritePDF(w io.Writer, it *domain.Itinerary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(it.Title, true)
	pdf.SetCreator("roadbook-service", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfReplacer.Replace(s)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, text(it.Title), "", "C", false)
	pdf.SetFont("Helvetica", "", 13)
	pdf.MultiCell(0, 7, text(it.Subtitle), "", "C", false)
	pdf.Ln(6)

	for i, day := range it.Days {
		if i > 0 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 15)
		pdf.MultiCell(0, 8, text(day.Title), "", "L", false)
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "", 10.5)
		for _, b := range day.Blocks {
			if b.Type == domain.BlockTitle || b.Text == "" {
				continue
			}
			pdf.MultiCell(0, 5, text(b.Text), "", "J", false)
			pdf.Ln(3)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
