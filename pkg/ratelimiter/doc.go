// Package ratelimiter provides an in-memory token bucket limiter.
//
// Each key owns a bucket of Config.Capacity tokens that refills by
// Config.RefillRate every Config.RefillInterval. Allow takes one token and
// reports when to retry once the bucket is empty:
//
//	limiter, err := ratelimiter.New(ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: time.Minute,
//	})
//	if err != nil {
//		return err
//	}
//	if res := limiter.Allow("login:" + ip); !res.Allowed {
//		w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
//		...
//	}
//
// Buckets live in memory. Run removes idle ones in the background:
//
//	eg.Go(limiter.Run(ctx, 10*time.Minute))
package ratelimiter
