package redis

import "errors"

// Check with errors.Is. Underlying go-redis errors are joined to these.
var (
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrUnsupportedScheme            = errors.New("redis connection URL must use redis:// or rediss://")
	ErrRedisNotReady                = errors.New("redis did not become ready within the given time period")
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
