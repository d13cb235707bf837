package checkout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/sanitizer"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}

// RequiresProof reports whether the customer must upload a payment proof.
func (m PaymentMethod) RequiresProof() bool {
	return m == PaymentBankTransfer
}

// Address is where the order ships to.
type Address struct {
	Name       string `json:"name" sanitize:"single_line,max:200"`
	Phone      string `json:"phone" sanitize:"single_line,max:50"`
	Street     string `json:"street" sanitize:"single_line,max:200"`
	City       string `json:"city" sanitize:"single_line,max:100"`
	State      string `json:"state,omitempty" sanitize:"single_line,max:100"`
	PostalCode string `json:"postal_code,omitempty" sanitize:"single_line,max:20"`
	Country    string `json:"country,omitempty" sanitize:"single_line,max:100"`
}

// Request is what the customer submits at checkout.
type Request struct {
	ShippingAddress Address       `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Notes           string        `json:"notes,omitempty" sanitize:"text"`
}

// Normalize cleans the free-text fields in place. Notes keep their line
// breaks; their length is checked by Validate, not truncated.
func (r *Request) Normalize() error {
	return sanitizer.Struct(r)
}

const (
	maxNotesLength = 500
	minPhoneDigits = 7
)

// Validate checks the request before anything is sent to the order service.
func (r Request) Validate() error {
	var errs ValidationErrors

	a := r.ShippingAddress
	required := []struct{ field, value string }{
		{"shipping_address.name", a.Name},
		{"shipping_address.phone", a.Phone},
		{"shipping_address.street", a.Street},
		{"shipping_address.city", a.City},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs.add(f.field, "field is required", "validation.required")
		}
	}
	if strings.TrimSpace(a.Phone) != "" && !phoneLike(a.Phone) {
		errs.add("shipping_address.phone", "must be a valid phone number", "validation.phone")
	}
	if !r.PaymentMethod.Valid() {
		errs.add("payment_method", "must be one of cod, bank_transfer, card", "validation.in")
	}
	if utf8.RuneCountInString(r.Notes) > maxNotesLength {
		errs.add("notes", "must be at most 500 characters", "validation.max")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func phoneLike(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

// Item is one order row, priced from the cart line it came from.
type Item struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the payload sent to the order service.
type Order struct {
	Items           []Item          `json:"items"`
	ShippingAddress Address         `json:"shipping_address"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	TotalSavings    decimal.Decimal `json:"total_savings"`
	Total           decimal.Decimal `json:"total"`

	// IdempotencyKey is sent as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// Receipt is the order service's answer to a placed order.
type Receipt struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// buildOrder prices every line with the same derivation the cart uses, so the
// totals sent equal the totals the customer saw.
func buildOrder(req Request, lines []cart.Line) Order {
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{
			BookID:    l.ID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Price:     l.DiscountedUnitPrice(),
			LineTotal: l.LineTotal(),
		}
	}
	totals := cart.Summarize(lines)
	return Order{
		Items:           items,
		ShippingAddress: trimAddress(req.ShippingAddress),
		PaymentMethod:   req.PaymentMethod,
		Notes:           strings.TrimSpace(req.Notes),
		Subtotal:        totals.Subtotal,
		ShippingFee:     totals.ShippingFee,
		TotalSavings:    totals.TotalSavings,
		Total:           totals.Total,
	}
}

func trimAddress(a Address) Address {
	return Address{
		Name:       strings.TrimSpace(a.Name),
		Phone:      strings.TrimSpace(a.Phone),
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
	}
}
