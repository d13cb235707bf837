package cart

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Totals are the pricing aggregates derived from the cart lines.
type Totals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingFee  decimal.Decimal `json:"shipping_fee"`
	TotalSavings decimal.Decimal `json:"total_savings"`
	Total        decimal.Decimal `json:"total"`
	TotalItems   int             `json:"total_items"`
}

// Summarize derives the cart totals. Shipping is charged once per order at the
// highest single-line shipping cost, not summed per line.
func Summarize(lines []Line) Totals {
	t := Totals{
		Subtotal:     decimal.Zero,
		ShippingFee:  decimal.Zero,
		TotalSavings: decimal.Zero,
	}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.LineTotal())
		t.TotalSavings = t.TotalSavings.Add(l.Savings())
		if l.ShippingCost.GreaterThan(t.ShippingFee) {
			t.ShippingFee = l.ShippingCost
		}
		t.TotalItems += l.Quantity
	}
	t.Total = t.Subtotal.Add(t.ShippingFee)
	return t
}

// FormattedTotals holds display strings for the totals.
type FormattedTotals struct {
	Subtotal     string `json:"subtotal"`
	ShippingFee  string `json:"shipping_fee"`
	TotalSavings string `json:"total_savings"`
	Total        string `json:"total"`
}

// Format renders the amounts for display in the given locale and currency.
func (t Totals) Format(tag language.Tag, unit currency.Unit) FormattedTotals {
	p := message.NewPrinter(tag)
	f := func(d decimal.Decimal) string {
		return p.Sprint(currency.Symbol(unit.Amount(d.Round(2).InexactFloat64())))
	}
	return FormattedTotals{
		Subtotal:     f(t.Subtotal),
		ShippingFee:  f(t.ShippingFee),
		TotalSavings: f(t.TotalSavings),
		Total:        f(t.Total),
	}
}
