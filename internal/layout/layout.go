// Package layout composes an invoice into a renderer-independent document
// model. Compose is a pure function of the invoice value: the same invoice
// always yields the same document, byte for byte, so exports are reproducible
// and the renderer never inspects the domain model directly.
package layout

import (
	"receiptgen/backend/internal/domain"
)

// FooterText appears pinned to the bottom of every page.
const FooterText = "Thank You For Your Business!"

// Image is an inline data-URL payload the renderer can embed directly.
type Image struct {
	DataURL string
}

type Header struct {
	Logo        *Image
	CompanyName string
	Title       string
}

// Column is one labelled block of the two-column party section.
type Column struct {
	Label string
	Lines []string
}

type Parties struct {
	BillTo  Column
	Details Column
}

type TableRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

type ItemTable struct {
	Columns [4]string
	Rows    []TableRow
}

type SummaryRow struct {
	Label     string
	Value     string
	Emphasize bool
}

type Notes struct {
	Body    string
	Payment string
}

// Signature carries both signature slots. The client side is always a blank
// rule to sign on paper; the issuer side shows the uploaded image when one
// exists and a blank rule otherwise.
type Signature struct {
	ClientLabel string
	IssuerLabel string
	ClientDate  string
	IssuerDate  string
	Image       *Image
}

// Document is the fully resolved page model handed to the renderer. Every
// string is already formatted for display; the renderer does positioning
// only.
type Document struct {
	PageSize   string
	Accent     RGB
	Header     Header
	Parties    Parties
	Table      ItemTable
	Summary    []SummaryRow
	Notes      Notes
	Signature  Signature
	FooterText string
}

var tableColumns = [4]string{"DETAILS", "QUANTITY", "PRICE", "TOTAL"}

// Compose builds the document for an invoice. Optional blocks (logo,
// signature image) appear only when their source value is present; everything
// else is laid out unconditionally in fixed order.
func Compose(inv domain.Invoice) Document {
	doc := Document{
		PageSize:   "A4",
		Accent:     Accent(inv.ThemeColor),
		FooterText: FooterText,
	}

	doc.Header = Header{
		CompanyName: inv.CompanyName,
		Title:       inv.Title,
	}
	if inv.LogoImage != "" {
		doc.Header.Logo = &Image{DataURL: inv.LogoImage}
	}

	doc.Parties = Parties{
		BillTo: Column{
			Label: sectionLabel(inv.Labels.BillTo, "Bill To"),
			Lines: compact(inv.BillTo.Name, inv.BillTo.Phone, inv.BillTo.Email),
		},
		Details: Column{
			Label: sectionLabel(inv.Labels.Details, "Event Details"),
			Lines: compact(
				CalendarDate(inv.EventDetails.Date),
				inv.EventDetails.Time,
				inv.EventDetails.Location,
			),
		},
	}

	doc.Table = ItemTable{Columns: tableColumns}
	for _, item := range inv.Items {
		doc.Table.Rows = append(doc.Table.Rows, TableRow{
			Description: item.Description,
			Quantity:    Quantity(item.Quantity),
			UnitPrice:   Money(item.UnitPrice),
			Total:       Money(item.Total()),
		})
	}

	doc.Summary = []SummaryRow{
		{Label: "Subtotal", Value: Money(inv.Subtotal())},
		{Label: "Deposit Paid", Value: Money(inv.Deposit)},
		{Label: "Total Due", Value: Money(inv.TotalDue()), Emphasize: true},
	}

	doc.Notes = Notes{
		Body:    inv.Notes,
		Payment: inv.PaymentDetails,
	}

	doc.Signature = Signature{
		ClientLabel: "Client Signature",
		IssuerLabel: inv.CompanyName + " Signature",
		ClientDate:  CalendarDate(inv.SignatureDate),
		IssuerDate:  CalendarDate(inv.SignatureDate),
	}
	if inv.SignatureImage != "" {
		doc.Signature.Image = &Image{DataURL: inv.SignatureImage}
	}

	return doc
}

func sectionLabel(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}

// compact drops empty lines so missing contact fields do not leave gaps.
func compact(lines ...string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
