// Package catalog holds the canonical catalog item shared by the cart,
// wishlist and checkout packages.
package catalog

import "github.com/shopspring/decimal"

// Book is a catalog item as returned by the catalog service after normalization.
type Book struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Author          string           `json:"author"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	FinalPrice      *decimal.Decimal `json:"final_price,omitempty"`
	ShippingCost    decimal.Decimal  `json:"shipping_cost"`
	Image           string           `json:"image,omitempty"`
	Category        string           `json:"category,omitempty"`
	Features        []string         `json:"features,omitempty"`
	Edition         string           `json:"edition,omitempty"`
}

// Page is one page of a paginated catalog listing.
type Page struct {
	Books      []Book `json:"books"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Total      int    `json:"total"`
}

// HasNext reports whether another page follows this one.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}
