// Package profile holds the per-company default templates. The company set
// is closed and compile-time known; adding a company is a data change here,
// not a logic change anywhere else.
package profile

import (
	"fmt"
	"time"

	"receiptgen/backend/internal/domain"
)

const (
	RoyalTurban  = "royal-turban"
	EscaladeRide = "escalade-ride"
)

type CompanyProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Tagline     string `json:"tagline"`
	ThemeColor  string `json:"theme_color"`
}

// ids fixes the listing order.
var ids = []string{RoyalTurban, EscaladeRide}

var profiles = map[string]CompanyProfile{
	RoyalTurban: {
		ID:          RoyalTurban,
		DisplayName: "Royal Turban NYC",
		Tagline:     "Turban Tying Services",
		ThemeColor:  "#f97316",
	},
	EscaladeRide: {
		ID:          EscaladeRide,
		DisplayName: "Escalade Ride Inc.",
		Tagline:     "Limo & Transportation",
		ThemeColor:  "#1f2937",
	},
}

var templates = map[string]domain.Invoice{
	RoyalTurban: {
		Title:       "Invoice #101",
		CompanyName: "ROYAL TURBAN NYC",
		EventDetails: domain.EventDetails{
			Time: "10:30 AM to 12:30 PM",
		},
		Items: []domain.LineItem{
			{Description: "Turban Tying Service", Quantity: 1, UnitPrice: 150},
			{Description: "Travel Charge", Quantity: 1, UnitPrice: 50},
		},
		Notes: "Terms & Conditions:\n" +
			"- The client will provide turban material on the day of the event.\n" +
			"- The event planner is responsible for the timing of turban tying.\n" +
			"- All deposits are non-refundable.",
		PaymentDetails: "Payment Methods: Cash or Zelle (929-247-6814).",
		Deposit:        0,
		Labels:         domain.SectionLabels{BillTo: "Bill To", Details: "Event Details"},
		ThemeColor:     "#f97316",
	},
	EscaladeRide: {
		Title:       "Trip Receipt #001",
		CompanyName: "Escalade Ride Inc.",
		EventDetails: domain.EventDetails{
			Time:     "Pickup: 10:00 AM",
			Location: "JFK Airport to Manhattan",
		},
		Items: []domain.LineItem{
			{Description: "Luxury Limo Service (Hours)", Quantity: 3, UnitPrice: 120},
			{Description: "Tolls & Surcharges", Quantity: 1, UnitPrice: 45},
			{Description: "Gratuity (20%)", Quantity: 1, UnitPrice: 72},
		},
		Notes: "Terms & Conditions:\n" +
			"- Overtime charges apply after the booked duration.\n" +
			"- No smoking or food allowed inside the vehicle.\n" +
			"- Cancellations within 24 hours are non-refundable.",
		PaymentDetails: "Payment Methods: Credit Card, Cash, or Corporate Account.",
		Deposit:        100,
		Labels:         domain.SectionLabels{BillTo: "Passenger / Bill To", Details: "Trip Information"},
		ThemeColor:     "#1f2937",
	},
}

func Known(id string) bool {
	_, ok := templates[id]
	return ok
}

// List returns the company profiles in their fixed display order.
func List() []CompanyProfile {
	out := make([]CompanyProfile, 0, len(ids))
	for _, id := range ids {
		out = append(out, profiles[id])
	}
	return out
}

func Get(id string) (CompanyProfile, bool) {
	p, ok := profiles[id]
	return p, ok
}

// Default returns a deep copy of the company's template invoice, with the
// event and signature dates stamped to today's calendar date. Mutating the
// returned value never affects the canonical template.
func Default(id string) (domain.Invoice, bool) {
	tmpl, ok := templates[id]
	if !ok {
		return domain.Invoice{}, false
	}

	inv := tmpl.Clone()
	today := time.Now().Format("2006-01-02")
	inv.EventDetails.Date = today
	inv.SignatureDate = today
	return inv, true
}

// MustDefault is for callers that have already validated the id against the
// closed set; an unknown id here is a programming error.
func MustDefault(id string) domain.Invoice {
	inv, ok := Default(id)
	if !ok {
		panic(fmt.Sprintf("profile: unknown company id %q", id))
	}
	return inv
}
