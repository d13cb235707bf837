// Package wishlist keeps the items a visitor saved for later.
//
// The wishlist is local only: it is persisted in the visitor's durable client
// storage after every change and is neither synced to the server nor enriched
// from the catalog. Entries are snapshots taken at the time they were saved.
//
//	wl := wishlist.NewStore(visitorStorage, wishlist.WithNotifier(buffer))
//	_ = wl.Load(ctx)
//	added, err := wl.Add(ctx, book) // false if already saved
//	err = wl.MoveToCart(ctx, book.ID, cartStore)
package wishlist
