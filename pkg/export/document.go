package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled value in a document section.
type Field struct {
	Label string
	Value string
}

// Section groups fields, followed by optional bullet points.
type Section struct {
	Heading string
	Fields  []Field
	Bullets []string
}

// Document is a single-page style record such as a receipt.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
	Footer   string
}

// DocumentRenderer renders Documents to PDF.
type DocumentRenderer struct{}

// NewDocumentRenderer constructs a DocumentRenderer.
func NewDocumentRenderer() *DocumentRenderer {
	return &DocumentRenderer{}
}

// Render lays out the document on A4 portrait pages.
func (r *DocumentRenderer) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("document title required")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(doc.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		if section.Heading != "" {
			pdf.SetFont("Arial", "B", 12)
			pdf.CellFormat(0, 9, tr(section.Heading), "B", 1, "L", false, 0, "")
			pdf.Ln(1)
		}
		for _, field := range section.Fields {
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(55, 7, tr(field.Label), "", 0, "L", false, 0, "")
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 7, tr(field.Value), "", "L", false)
		}
		for _, bullet := range section.Bullets {
			pdf.SetFont("Arial", "", 10)
			pdf.CellFormat(6, 7, "-", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 7, tr(bullet), "", "L", false)
		}
		pdf.Ln(3)
	}

	if doc.Footer != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(doc.Footer), "", "C", false)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
