package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/bookhaven/storefront/core/catalog"
)

var hundred = decimal.NewFromInt(100)

// Line is one catalog item in the cart. A cart holds at most one line per ID.
type Line struct {
	ID              string           `json:"id"`
	Quantity        int              `json:"quantity"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	UnitPrice       decimal.Decimal  `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	FinalPrice      *decimal.Decimal `json:"final_price,omitempty"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Image           string           `json:"image,omitempty"`
	Category        string           `json:"category,omitempty"`
	Features        []string         `json:"features,omitempty"`
	Edition         string           `json:"edition,omitempty"`
}

// NewLine seeds a line from a catalog item.
func NewLine(b catalog.Book, quantity int) Line {
	l := Line{ID: b.ID, Quantity: quantity}
	return l.withBook(b)
}

// withBook refreshes display and pricing fields from the catalog.
// Identity and quantity are kept.
func (l Line) withBook(b catalog.Book) Line {
	l.Title = b.Title
	l.Author = b.Author
	l.UnitPrice = b.Price
	l.DiscountPercent = b.DiscountPercent
	l.FinalPrice = nil
	if b.FinalPrice != nil {
		fp := *b.FinalPrice
		l.FinalPrice = &fp
	}
	l.ShippingCost = b.ShippingCost
	l.Image = b.Image
	l.Category = b.Category
	l.Features = slices.Clone(b.Features)
	l.Edition = b.Edition
	return l
}

// DiscountedUnitPrice is the price actually charged per unit: the percentage
// discount applied to UnitPrice, or FinalPrice when it is lower than both the
// unit price and the percentage-discounted price.
func (l Line) DiscountedUnitPrice() decimal.Decimal {
	pct := l.DiscountPercent
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(hundred) {
		pct = hundred
	}

	computed := l.UnitPrice.Mul(hundred.Sub(pct)).Div(hundred)
	if l.FinalPrice != nil && !l.FinalPrice.IsNegative() &&
		l.FinalPrice.LessThan(l.UnitPrice) && l.FinalPrice.LessThan(computed) {
		return *l.FinalPrice
	}
	return computed
}

// LineTotal is the discounted unit price times quantity.
func (l Line) LineTotal() decimal.Decimal {
	return l.DiscountedUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Savings is what the discount saves on this line, never negative.
func (l Line) Savings() decimal.Decimal {
	diff := l.UnitPrice.Sub(l.DiscountedUnitPrice())
	if !diff.IsPositive() {
		return decimal.Zero
	}
	return diff.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.FinalPrice != nil {
			fp := *l.FinalPrice
			l.FinalPrice = &fp
		}
		l.Features = slices.Clone(l.Features)
		out[i] = l
	}
	return out
}

// normalizeLines enforces the cart invariants on data read from storage or the
// remote cart: lines without an ID or with quantity < 1 are dropped and
// duplicate IDs are merged by summing quantities, keeping first-seen order.
func normalizeLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		if i, ok := index[l.ID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ID] = len(out)
		out = append(out, l)
	}
	return out
}

func indexOf(lines []Line, id string) int {
	return slices.IndexFunc(lines, func(l Line) bool { return l.ID == id })
}
