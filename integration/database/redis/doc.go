// Package redis connects to Redis and checks its health.
//
// Connect validates the URL (redis:// or rediss://), then pings with
// exponential backoff until the server answers, the attempts run out or
// ConnectTimeout expires:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	ready := redis.Healthcheck(client) // func(ctx) error for /readyz
//
// The storefront uses it as the shared backend for visitor storage when
// STORAGE_DRIVER=redis.
package redis
