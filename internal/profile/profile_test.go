package profile

import (
	"testing"
	"time"
)

func TestDefaultDeepCopy(t *testing.T) {
	first, ok := Default(RoyalTurban)
	if !ok {
		t.Fatalf("expected royal-turban template")
	}

	first.Items[0].Description = "scribbled over"
	first.BillTo.Name = "someone"

	second, _ := Default(RoyalTurban)
	if second.Items[0].Description != "Turban Tying Service" {
		t.Fatalf("template item was mutated through a returned copy: %+v", second.Items[0])
	}
	if second.BillTo.Name != "" {
		t.Fatalf("template bill-to was mutated through a returned copy")
	}
}

func TestDefaultStampsToday(t *testing.T) {
	inv, _ := Default(EscaladeRide)
	today := time.Now().Format("2006-01-02")

	if inv.EventDetails.Date != today {
		t.Fatalf("event date = %q, want %q", inv.EventDetails.Date, today)
	}
	if inv.SignatureDate != today {
		t.Fatalf("signature date = %q, want %q", inv.SignatureDate, today)
	}
}

func TestDefaultUnknownCompany(t *testing.T) {
	if _, ok := Default("acme"); ok {
		t.Fatalf("unknown company id should not resolve")
	}
	if Known("acme") {
		t.Fatalf("unknown company id should not be known")
	}
}

func TestMustDefaultPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown company id")
		}
	}()
	MustDefault("acme")
}

func TestListOrderAndContent(t *testing.T) {
	list := List()
	if len(list) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(list))
	}
	if list[0].ID != RoyalTurban || list[1].ID != EscaladeRide {
		t.Fatalf("unexpected listing order: %+v", list)
	}
	if list[0].ThemeColor != "#f97316" {
		t.Fatalf("unexpected theme for %s: %s", list[0].ID, list[0].ThemeColor)
	}
}

func TestTemplatesCarryCompanyDefaults(t *testing.T) {
	inv := MustDefault(EscaladeRide)

	if inv.Deposit != 100 {
		t.Fatalf("deposit = %v, want 100", inv.Deposit)
	}
	if inv.Labels.BillTo != "Passenger / Bill To" || inv.Labels.Details != "Trip Information" {
		t.Fatalf("unexpected labels: %+v", inv.Labels)
	}
	if got := inv.Subtotal(); got != 477 {
		t.Fatalf("template subtotal = %v, want 477", got)
	}
}
