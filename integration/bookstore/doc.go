// Package bookstore is the client of the bookstore REST API: authentication,
// catalog, cart and orders.
//
// Responses are normalized at this boundary. The API returns the same entity
// in several shapes (a cart line may carry its book as an object, as an id
// string, or as bookId/_id/id) and wraps payloads in data/items/cart
// envelopes; callers only ever see the canonical types of the core packages.
//
// Reads are retried with exponential backoff on transport errors, 429 and 5xx.
// Mutations are sent once. Cart adds and order creation carry an
// Idempotency-Key header when the caller provides one.
//
//	api := bookstore.MustNew(cfg, bookstore.WithLogger(log))
//	visitorAPI := api.Authorized(sessionStore.Token)
//	lines, err := visitorAPI.GetCart(ctx)
package bookstore
