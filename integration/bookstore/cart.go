package bookstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/bookhaven/storefront/core/cart"
)

// IdempotencyHeader carries the idempotency key of a cart add.
const IdempotencyHeader = "Idempotency-Key"

var _ cart.RemoteCart = (*Client)(nil)

// GetCart returns the authenticated actor's cart lines.
func (c *Client) GetCart(ctx context.Context) ([]cart.Line, error) {
	resp, err := c.do(ctx, request{op: "get_cart", method: http.MethodGet, path: "/cart"})
	if err != nil {
		return nil, err
	}
	return parseLines(resp.json()), nil
}

// AddItem adds quantity units of id. The service increments an existing line.
func (c *Client) AddItem(ctx context.Context, id string, quantity int, idempotencyKey string) error {
	body, err := json.Marshal(map[string]any{"bookId": id, "quantity": quantity})
	if err != nil {
		return err
	}
	req := request{op: "add_cart_item", method: http.MethodPost, path: "/cart", body: body, contentType: "application/json"}
	if idempotencyKey != "" {
		req.header = http.Header{IdempotencyHeader: {idempotencyKey}}
	}
	_, err = c.do(ctx, req)
	return err
}

// UpdateItem sets the quantity of a line.
func (c *Client) UpdateItem(ctx context.Context, id string, quantity int) error {
	body, err := json.Marshal(map[string]any{"quantity": quantity})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		op:          "update_cart_item",
		method:      http.MethodPut,
		path:        "/cart/" + url.PathEscape(id),
		body:        body,
		contentType: "application/json",
	})
	return err
}

// RemoveItem deletes a line.
func (c *Client) RemoveItem(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{op: "remove_cart_item", method: http.MethodDelete, path: "/cart/" + url.PathEscape(id)})
	return err
}

// ClearCart deletes every line.
func (c *Client) ClearCart(ctx context.Context) error {
	_, err := c.do(ctx, request{op: "clear_cart", method: http.MethodDelete, path: "/cart"})
	return err
}
