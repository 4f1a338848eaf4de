package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Edit requests use pointer or RawMessage fields so that "absent" and
// "explicitly set" are distinguishable. Every apply function returns a new
// Invoice value; the input is never mutated.

type BillToEdit struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}

type EventDetailsEdit struct {
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
	Location *string `json:"location,omitempty"`
}

type LabelsEdit struct {
	BillTo  *string `json:"billTo,omitempty"`
	Details *string `json:"details,omitempty"`
}

type InvoiceEdit struct {
	Title          *string           `json:"invoiceTitle,omitempty"`
	CompanyName    *string           `json:"companyName,omitempty"`
	BillTo         *BillToEdit       `json:"billTo,omitempty"`
	EventDetails   *EventDetailsEdit `json:"eventDetails,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
	PaymentDetails *string           `json:"paymentDetails,omitempty"`
	SignatureDate  *string           `json:"signatureDate,omitempty"`
	Deposit        json.RawMessage   `json:"deposit,omitempty"`
	ThemeColor     *string           `json:"themeColor,omitempty"`
	Labels         *LabelsEdit       `json:"labels,omitempty"`
}

type ItemEdit struct {
	Description *string         `json:"description,omitempty"`
	Quantity    json.RawMessage `json:"quantity,omitempty"`
	UnitPrice   json.RawMessage `json:"price,omitempty"`
}

// CoerceAmount turns raw edit input into a non-negative amount. Non-numeric
// input (including quoted text that does not parse) becomes 0; this is a
// normalization rule, not an error. Quoted numbers are accepted because form
// fields arrive as strings.
func CoerceAmount(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clampAmount(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clampAmount(v)
		}
	}

	return 0
}

func clampAmount(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func Apply(inv Invoice, edit InvoiceEdit) Invoice {
	next := inv.Clone()

	if edit.Title != nil {
		next.Title = *edit.Title
	}
	if edit.CompanyName != nil {
		next.CompanyName = *edit.CompanyName
	}
	if edit.BillTo != nil {
		if edit.BillTo.Name != nil {
			next.BillTo.Name = *edit.BillTo.Name
		}
		if edit.BillTo.Phone != nil {
			next.BillTo.Phone = *edit.BillTo.Phone
		}
		if edit.BillTo.Email != nil {
			next.BillTo.Email = *edit.BillTo.Email
		}
	}
	if edit.EventDetails != nil {
		if edit.EventDetails.Date != nil {
			next.EventDetails.Date = *edit.EventDetails.Date
		}
		if edit.EventDetails.Time != nil {
			next.EventDetails.Time = *edit.EventDetails.Time
		}
		if edit.EventDetails.Location != nil {
			next.EventDetails.Location = *edit.EventDetails.Location
		}
	}
	if edit.Notes != nil {
		next.Notes = *edit.Notes
	}
	if edit.PaymentDetails != nil {
		next.PaymentDetails = *edit.PaymentDetails
	}
	if edit.SignatureDate != nil {
		next.SignatureDate = *edit.SignatureDate
	}
	if len(edit.Deposit) > 0 {
		next.Deposit = CoerceAmount(edit.Deposit)
	}
	if edit.ThemeColor != nil {
		next.ThemeColor = *edit.ThemeColor
	}
	if edit.Labels != nil {
		if edit.Labels.BillTo != nil {
			next.Labels.BillTo = *edit.Labels.BillTo
		}
		if edit.Labels.Details != nil {
			next.Labels.Details = *edit.Labels.Details
		}
	}

	return next
}

// AddItem appends a fresh row with quantity 1, mirroring how the editing
// surface seeds a new line.
func AddItem(inv Invoice) Invoice {
	next := inv.Clone()
	next.Items = append(next.Items, LineItem{Quantity: 1})
	return next
}

// RemoveItem drops the row at index. Out-of-range indexes are a no-op.
func RemoveItem(inv Invoice, index int) Invoice {
	next := inv.Clone()
	if index < 0 || index >= len(next.Items) {
		return next
	}
	next.Items = append(next.Items[:index], next.Items[index+1:]...)
	return next
}

// UpdateItem applies field edits to the row at index. Out-of-range indexes
// are a no-op.
func UpdateItem(inv Invoice, index int, edit ItemEdit) Invoice {
	next := inv.Clone()
	if index < 0 || index >= len(next.Items) {
		return next
	}

	item := next.Items[index]
	if edit.Description != nil {
		item.Description = *edit.Description
	}
	if len(edit.Quantity) > 0 {
		item.Quantity = CoerceAmount(edit.Quantity)
	}
	if len(edit.UnitPrice) > 0 {
		item.UnitPrice = CoerceAmount(edit.UnitPrice)
	}
	next.Items[index] = item

	return next
}
