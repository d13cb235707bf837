// Package storage provides the durable client storage used by the storefront
// stores: the anonymous cart, the wishlist and the cached identity/token pair.
//
// Storage is a small key/value interface. Memory and File are included;
// integration/storage/redisstore provides a Redis backend. Namespace scopes a
// backend to a single visitor:
//
//	backend, _ := storage.NewFile("./data")
//	visitor := storage.Namespace(backend, "visitor:"+id)
//	_ = storage.SetJSON(ctx, visitor, storage.KeyWishlist, entries)
package storage
