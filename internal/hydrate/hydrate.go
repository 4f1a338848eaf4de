// Package hydrate reconciles a persisted invoice record with the current
// company default. Records written by older versions of the generator may be
// missing fields or carry junk; every field that cannot be decoded simply
// keeps the default's value. Corruption never blocks editing.
package hydrate

import (
	"encoding/json"

	"receiptgen/backend/internal/domain"
)

// Merge overlays the persisted payload onto the default invoice, field by
// field. Nested objects are merged key by key; items is atomic (a well-formed
// array fully replaces the default's items, anything else keeps them).
func Merge(raw []byte, def domain.Invoice) domain.Invoice {
	inv := def.Clone()
	if len(raw) == 0 {
		return inv
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return inv
	}

	mergeString(fields["invoiceTitle"], &inv.Title)
	mergeString(fields["companyName"], &inv.CompanyName)
	mergeString(fields["notes"], &inv.Notes)
	mergeString(fields["paymentDetails"], &inv.PaymentDetails)
	mergeString(fields["signatureDate"], &inv.SignatureDate)
	mergeString(fields["logoBase64"], &inv.LogoImage)
	mergeString(fields["signatureBase64"], &inv.SignatureImage)
	mergeString(fields["themeColor"], &inv.ThemeColor)
	mergeAmount(fields["deposit"], &inv.Deposit)

	if nested, ok := objectFields(fields["billTo"]); ok {
		mergeString(nested["name"], &inv.BillTo.Name)
		mergeString(nested["phone"], &inv.BillTo.Phone)
		mergeString(nested["email"], &inv.BillTo.Email)
	}
	if nested, ok := objectFields(fields["eventDetails"]); ok {
		mergeString(nested["date"], &inv.EventDetails.Date)
		mergeString(nested["time"], &inv.EventDetails.Time)
		mergeString(nested["location"], &inv.EventDetails.Location)
	}
	if nested, ok := objectFields(fields["labels"]); ok {
		mergeString(nested["billTo"], &inv.Labels.BillTo)
		mergeString(nested["details"], &inv.Labels.Details)
	}

	if raw, ok := fields["items"]; ok {
		var items []domain.LineItem
		if err := json.Unmarshal(raw, &items); err == nil && items != nil {
			inv.Items = items
		}
	}

	return inv
}

func mergeString(raw json.RawMessage, dest *string) {
	if len(raw) == 0 {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dest = s
	}
}

func mergeAmount(raw json.RawMessage, dest *float64) {
	if len(raw) == 0 {
		return
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	if v < 0 {
		v = 0
	}
	*dest = v
}

func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
