package domain

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"price"`
}

// Total is the derived per-line amount. Never stored.
func (li LineItem) Total() float64 {
	return li.Quantity * li.UnitPrice
}

type BillTo struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type EventDetails struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

type SectionLabels struct {
	BillTo  string `json:"billTo,omitempty"`
	Details string `json:"details,omitempty"`
}

// Invoice is the root billing record. The JSON tags match the persisted
// encoding written by earlier deployments of the generator, so drafts saved
// before this backend existed hydrate cleanly.
type Invoice struct {
	Title          string        `json:"invoiceTitle"`
	CompanyName    string        `json:"companyName"`
	BillTo         BillTo        `json:"billTo"`
	EventDetails   EventDetails  `json:"eventDetails"`
	Items          []LineItem    `json:"items"`
	Notes          string        `json:"notes"`
	PaymentDetails string        `json:"paymentDetails"`
	SignatureDate  string        `json:"signatureDate"`
	Deposit        float64       `json:"deposit"`
	LogoImage      string        `json:"logoBase64,omitempty"`
	SignatureImage string        `json:"signatureBase64,omitempty"`
	Labels         SectionLabels `json:"labels,omitempty"`
	ThemeColor     string        `json:"themeColor"`
}

// Subtotal sums the derived line totals. An empty item list yields 0.
func (inv Invoice) Subtotal() float64 {
	sum := 0.0
	for _, item := range inv.Items {
		sum += item.Total()
	}
	return sum
}

// TotalDue is subtotal minus deposit. Deliberately not clamped at zero:
// an overpaid deposit shows as a negative amount due.
func (inv Invoice) TotalDue() float64 {
	return inv.Subtotal() - inv.Deposit
}

// Clone returns a deep copy; the items slice is never shared.
func (inv Invoice) Clone() Invoice {
	next := inv
	next.Items = make([]LineItem, len(inv.Items))
	copy(next.Items, inv.Items)
	return next
}
