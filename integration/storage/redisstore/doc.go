// Package redisstore implements storage.Storage on Redis so visitor carts,
// wishlists and cached sessions survive restarts and are shared between
// storefront instances.
//
//	client, _ := redis.Connect(ctx, cfg.Redis)
//	st, _ := redisstore.New(client, redisstore.WithPrefix("storefront"), redisstore.WithTTL(30*24*time.Hour))
//	visitor := storage.Namespace(st, visitorID)
package redisstore
