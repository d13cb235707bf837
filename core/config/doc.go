// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package loads a .env file on first use and uses caarlos0/env for
// parsing environment variables into struct fields.
//
//	type APIConfig struct {
//		BaseURL string        `env:"BOOKSTORE_API_URL,required"`
//		Timeout time.Duration `env:"BOOKSTORE_API_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg APIConfig
//	config.MustLoad(&cfg)
package config
