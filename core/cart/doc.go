// Package cart holds the shopping cart of one visitor.
//
// An anonymous visitor's cart lives in durable client storage (Local mode).
// After login it lives on the cart service (Remote mode) and every remote
// mutation is followed by a re-read of the authoritative cart. SyncOnLogin
// merges the local cart into the remote one exactly once, even across retries.
//
// Lines are enriched from the catalog on load so prices shown are current:
//
//	store := cart.NewStore(cart.Local(visitorStorage), catalogClient,
//		cart.WithLogger(log),
//		cart.WithNotifier(buffer),
//	)
//	if err := store.Load(ctx); err != nil {
//		// visitor was notified; the cart stays empty
//	}
//	_ = store.Add(ctx, book, 1)
//	totals := store.Totals()
//
// Pricing is derived, never stored: see Line.DiscountedUnitPrice and Summarize.
// Shipping is charged once per order at the highest line shipping cost.
package cart
