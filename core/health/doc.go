// Package health provides liveness and readiness handlers.
//
//	r.Get("/healthz", health.Liveness)
//	r.Get("/readyz", health.Readiness(log, 2*time.Second, redis.Healthcheck(client)))
//
// A Check has the shape func(context.Context) error, so connection
// healthchecks from the integration packages plug in directly.
package health
