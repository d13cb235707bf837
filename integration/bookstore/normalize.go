package bookstore

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/checkout"
	"github.com/bookhaven/storefront/core/session"
)

// The API is not consistent about shapes: the same entity arrives wrapped in
// different envelopes and with different key spellings. Each canonical type
// has exactly one mapping here.

// first returns the first of paths that exists in r.
func first(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// unwrap descends through envelope keys until none of them matches.
func unwrap(r gjson.Result, keys ...string) gjson.Result {
	for range 4 {
		descended := false
		for _, k := range keys {
			if v := r.Get(k); v.IsObject() || v.IsArray() {
				r = v
				descended = true
				break
			}
		}
		if !descended || r.IsArray() {
			return r
		}
	}
	return r
}

func decimalOf(r gjson.Result) (decimal.Decimal, bool) {
	switch r.Type {
	case gjson.Number:
		d, err := decimal.NewFromString(r.Raw)
		return d, err == nil
	case gjson.String:
		d, err := decimal.NewFromString(r.Str)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func decimalOr(r gjson.Result, fallback decimal.Decimal) decimal.Decimal {
	if d, ok := decimalOf(r); ok {
		return d
	}
	return fallback
}

func idOf(r gjson.Result) string {
	return first(r, "_id", "id").String()
}

func parseIdentity(body gjson.Result) session.Identity {
	u := unwrap(body, "data", "user")
	return session.Identity{
		ID:     idOf(u),
		Name:   first(u, "name", "fullName", "username").String(),
		Email:  u.Get("email").String(),
		Role:   session.ParseRole(u.Get("role").String()),
		Phone:  u.Get("phone").String(),
		Avatar: first(u, "avatar", "avatarUrl", "image").String(),
	}
}

func parseToken(body gjson.Result) string {
	return first(body, "token", "accessToken", "access_token", "data.token", "data.accessToken").String()
}

func parseBook(r gjson.Result) catalog.Book {
	b := catalog.Book{
		ID:              idOf(r),
		Title:           first(r, "title", "name").String(),
		Author:          authorOf(r.Get("author")),
		Price:           decimalOr(first(r, "price", "originalPrice"), decimal.Zero),
		DiscountPercent: decimalOr(first(r, "discountPercent", "discount_percent", "discount"), decimal.Zero),
		ShippingCost:    decimalOr(first(r, "shippingCost", "shipping_cost", "shipping"), decimal.Zero),
		Image:           first(r, "image", "coverImage", "cover_image", "images.0").String(),
		Category:        nameOf(r.Get("category")),
		Edition:         r.Get("edition").String(),
	}
	if fp, ok := decimalOf(first(r, "finalPrice", "final_price")); ok {
		b.FinalPrice = &fp
	}
	for _, f := range r.Get("features").Array() {
		b.Features = append(b.Features, f.String())
	}
	return b
}

// authorOf accepts both "Name" and {"name": "Name"}.
func authorOf(r gjson.Result) string {
	return nameOf(r)
}

func nameOf(r gjson.Result) string {
	if r.IsObject() {
		return first(r, "name", "title").String()
	}
	return r.String()
}

func parseBookDetail(body gjson.Result) catalog.Book {
	return parseBook(unwrap(body, "data", "book"))
}

func parsePage(body gjson.Result, requested int) catalog.Page {
	list := unwrap(body, "data", "books", "items")
	if !list.IsArray() {
		list = first(body, "books", "items", "data.books", "data.items")
	}

	p := catalog.Page{
		Page:       int(first(body, "page", "currentPage", "pagination.page", "data.page", "data.currentPage").Int()),
		TotalPages: int(first(body, "totalPages", "pages", "pagination.totalPages", "data.totalPages").Int()),
		Total:      int(first(body, "total", "totalBooks", "pagination.total", "data.total").Int()),
	}
	for _, item := range list.Array() {
		if b := parseBook(item); b.ID != "" {
			p.Books = append(p.Books, b)
		}
	}
	if p.Page == 0 {
		p.Page = requested
	}
	if p.Total == 0 {
		p.Total = len(p.Books)
	}
	return p
}

// parseLine accepts {book: {...}, quantity}, {book: "id"}, {bookId}, {_id} and {id}.
func parseLine(r gjson.Result) cart.Line {
	src := r
	var id string
	switch b := r.Get("book"); {
	case b.IsObject():
		src = b
		id = idOf(b)
	case b.Type == gjson.String:
		id = b.Str
	}
	if id == "" {
		id = first(r, "bookId", "book_id", "productId", "_id", "id").String()
	}

	book := parseBook(src)
	l := cart.NewLine(book, int(first(r, "quantity", "qty").Int()))
	l.ID = id
	if l.Quantity == 0 && !first(r, "quantity", "qty").Exists() {
		l.Quantity = 1
	}
	return l
}

func parseLines(body gjson.Result) []cart.Line {
	list := unwrap(body, "data", "cart", "items")
	var lines []cart.Line
	for _, item := range list.Array() {
		if l := parseLine(item); l.ID != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func parseReceipt(body gjson.Result) checkout.Receipt {
	o := unwrap(body, "data", "order")
	return checkout.Receipt{
		ID:     first(o, "_id", "id", "orderId").String(),
		Status: first(o, "status", "orderStatus").String(),
		Total:  decimalOr(first(o, "total", "totalAmount", "totalPrice"), decimal.Zero),
	}
}

func parseMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	return first(gjson.ParseBytes(body), "message", "error.message", "error", "msg").String()
}
