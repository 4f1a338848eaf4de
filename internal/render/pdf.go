// Package render turns a composed layout document into PDF bytes. It is the
// only package that touches gofpdf; everything it draws comes preformatted
// from the layout package.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"receiptgen/backend/internal/layout"
)

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	logoWidth   = 30.0
	signWidth   = 40.0
	signHeight  = 15.0
	summaryCol  = 45.0
	footerSpace = 20.0
)

// PDF renders the document to a single in-memory PDF. Layout decisions live
// in the document; this function only positions and draws.
func PDF(doc layout.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", doc.PageSize, "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, footerSpace)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 8, tr(doc.FooterText), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	drawHeader(pdf, tr, doc, contentWidth)
	drawParties(pdf, tr, doc, contentWidth)
	drawTable(pdf, tr, doc, contentWidth)
	drawSummary(pdf, tr, doc, contentWidth)
	drawNotes(pdf, tr, doc, contentWidth)
	drawSignatures(pdf, tr, doc, contentWidth)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	top := pdf.GetY()
	textLeft := pageMargin

	if doc.Header.Logo != nil {
		if name, ok := embedImage(pdf, "logo", doc.Header.Logo.DataURL); ok {
			pdf.ImageOptions(name, pageMargin, top, logoWidth, 0, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			textLeft += logoWidth + 5
		}
	}

	pdf.SetX(textLeft)
	pdf.SetTextColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentWidth-(textLeft-pageMargin), 9, tr(doc.Header.CompanyName), "", 2, "L", false, 0, "")
	pdf.SetTextColor(60, 60, 60)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(contentWidth-(textLeft-pageMargin), 7, tr(doc.Header.Title), "", 2, "L", false, 0, "")

	if doc.Header.Logo != nil && pdf.GetY() < top+logoWidth*0.75 {
		pdf.SetY(top + logoWidth*0.75)
	}
	pdf.Ln(6)
}

func drawParties(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	colWidth := contentWidth / 2
	top := pdf.GetY()

	leftBottom := drawColumn(pdf, tr, doc.Parties.BillTo, doc.Accent, pageMargin, top, colWidth-5)
	rightBottom := drawColumn(pdf, tr, doc.Parties.Details, doc.Accent, pageMargin+colWidth, top, colWidth-5)

	if rightBottom > leftBottom {
		leftBottom = rightBottom
	}
	pdf.SetY(leftBottom + 6)
}

func drawColumn(pdf *gofpdf.Fpdf, tr func(string) string, col layout.Column, accent layout.RGB, x, y, width float64) float64 {
	pdf.SetXY(x, y)
	pdf.SetTextColor(accent.R, accent.G, accent.B)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(width, lineHeight, tr(strings.ToUpper(col.Label)), "", 2, "L", false, 0, "")

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range col.Lines {
		pdf.SetX(x)
		pdf.MultiCell(width, lineHeight-1, tr(line), "", "L", false)
	}
	return pdf.GetY()
}

func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	widths := [4]float64{
		contentWidth * 0.46,
		contentWidth * 0.16,
		contentWidth * 0.19,
		contentWidth * 0.19,
	}
	aligns := [4]string{"L", "C", "R", "R"}

	pdf.SetFillColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for i, name := range doc.Table.Columns {
		pdf.CellFormat(widths[i], 8, tr(name), "", 0, aligns[i], true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetDrawColor(220, 220, 220)
	for _, row := range doc.Table.Rows {
		cells := [4]string{row.Description, row.Quantity, row.UnitPrice, row.Total}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 8, tr(cell), "B", 0, aligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func drawSummary(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	labelX := pageMargin + contentWidth - 2*summaryCol

	for _, row := range doc.Summary {
		pdf.SetX(labelX)
		if row.Emphasize {
			pdf.SetFillColor(doc.Accent.R, doc.Accent.G, doc.Accent.B)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(summaryCol, 8, tr(row.Label), "", 0, "L", true, 0, "")
			pdf.CellFormat(summaryCol, 8, tr(row.Value), "", 1, "R", true, 0, "")
			continue
		}
		pdf.SetTextColor(80, 80, 80)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(summaryCol, 7, tr(row.Label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(summaryCol, 7, tr(row.Value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func drawNotes(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	if doc.Notes.Body != "" {
		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentWidth, 5, tr(doc.Notes.Body), "", "L", false)
		pdf.Ln(3)
	}
	if doc.Notes.Payment != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.MultiCell(contentWidth, 5, tr(doc.Notes.Payment), "", "L", false)
		pdf.Ln(3)
	}
}

func drawSignatures(pdf *gofpdf.Fpdf, tr func(string) string, doc layout.Document, contentWidth float64) {
	colWidth := contentWidth / 2
	top := pdf.GetY() + 8
	baseline := top + signHeight

	// Client side always signs on paper, so it gets a blank rule.
	pdf.SetDrawColor(40, 40, 40)
	pdf.Line(pageMargin, baseline, pageMargin+signWidth*1.5, baseline)

	issuerX := pageMargin + colWidth
	if doc.Signature.Image != nil {
		if name, ok := embedImage(pdf, "signature", doc.Signature.Image.DataURL); ok {
			pdf.ImageOptions(name, issuerX, top, signWidth, 0, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		} else {
			pdf.Line(issuerX, baseline, issuerX+signWidth*1.5, baseline)
		}
	} else {
		pdf.Line(issuerX, baseline, issuerX+signWidth*1.5, baseline)
	}

	pdf.SetY(baseline + 2)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(colWidth, 5, tr(doc.Signature.ClientLabel), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidth, 5, tr(doc.Signature.IssuerLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(colWidth, 5, tr(doc.Signature.ClientDate), "", 0, "L", false, 0, "")
	pdf.CellFormat(colWidth, 5, tr(doc.Signature.IssuerDate), "", 1, "L", false, 0, "")
}

// embedImage registers an inline data-URL image with the PDF and reports
// whether it can be drawn. Undecodable or unsupported payloads are skipped so
// a bad upload degrades to the image-less rendering instead of failing the
// export.
func embedImage(pdf *gofpdf.Fpdf, name, dataURL string) (string, bool) {
	payload, imageType, err := decodeDataURL(dataURL)
	if err != nil {
		return "", false
	}
	info := pdf.RegisterImageOptionsReader(name,
		gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true},
		bytes.NewReader(payload))
	if info == nil || pdf.Err() {
		pdf.ClearError()
		return "", false
	}
	return name, true
}

func decodeDataURL(dataURL string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URL")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("unsupported data URL encoding")
	}

	mime := strings.TrimSuffix(meta, ";base64")
	var imageType string
	switch mime {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return nil, "", fmt.Errorf("unsupported image type %q", mime)
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode image payload: %w", err)
	}
	return payload, imageType, nil
}
