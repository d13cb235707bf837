package bookstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bookhaven/storefront/core/cart"
	"github.com/bookhaven/storefront/core/catalog"
	"github.com/bookhaven/storefront/core/logger"
)

var _ cart.Catalog = (*Client)(nil)

// ListBooks returns one page of the catalog. Pages start at 1.
func (c *Client) ListBooks(ctx context.Context, page, limit int) (catalog.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = c.cfg.CatalogPageSize
	}
	resp, err := c.do(ctx, request{
		op:     "list_books",
		method: http.MethodGet,
		path:   "/books",
		query:  url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}},
	})
	if err != nil {
		return catalog.Page{}, err
	}
	return parsePage(resp.json(), page), nil
}

// GetBook returns a single catalog item.
func (c *Client) GetBook(ctx context.Context, id string) (catalog.Book, error) {
	resp, err := c.do(ctx, request{op: "get_book", method: http.MethodGet, path: "/books/" + url.PathEscape(id)})
	if err != nil {
		return catalog.Book{}, err
	}
	b := parseBookDetail(resp.json())
	if b.ID == "" {
		return catalog.Book{}, fmt.Errorf("%w: get_book: no id", ErrUnexpectedResponse)
	}
	return b, nil
}

// LookupBooks resolves ids to live catalog items. It pages through the
// listing until every id is found, then fetches any stragglers one by one.
// Ids unknown to the catalog are absent from the result.
func (c *Client) LookupBooks(ctx context.Context, ids []string) (map[string]catalog.Book, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			want[id] = struct{}{}
		}
	}
	found := make(map[string]catalog.Book, len(want))
	if len(want) == 0 {
		return found, nil
	}

	var lastErr error
	for page := 1; page <= c.cfg.CatalogMaxPages && len(found) < len(want); page++ {
		p, err := c.ListBooks(ctx, page, c.cfg.CatalogPageSize)
		if err != nil {
			lastErr = err
			c.log.WarnContext(ctx, "catalog listing failed, falling back to item lookups", logger.Error(err))
			break
		}
		for _, b := range p.Books {
			if _, ok := want[b.ID]; ok {
				found[b.ID] = b
			}
		}
		if !p.HasNext() || len(p.Books) == 0 {
			break
		}
	}

	for id := range want {
		if _, ok := found[id]; ok {
			continue
		}
		b, err := c.GetBook(ctx, id)
		switch {
		case err == nil:
			found[id] = b
		case errors.Is(err, ErrNotFound):
		default:
			lastErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}

	if len(found) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return found, nil
}
