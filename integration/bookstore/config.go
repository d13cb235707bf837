package bookstore

import "time"

// Config configures the bookstore API client.
type Config struct {
	BaseURL          string        `env:"BOOKSTORE_API_URL,required"`
	Timeout          time.Duration `env:"BOOKSTORE_API_TIMEOUT" envDefault:"10s"`
	RetryMaxElapsed  time.Duration `env:"BOOKSTORE_API_RETRY_MAX_ELAPSED" envDefault:"5s"`
	RetryMaxAttempts uint64        `env:"BOOKSTORE_API_RETRY_MAX_ATTEMPTS" envDefault:"3"`
	CatalogPageSize  int           `env:"BOOKSTORE_API_CATALOG_PAGE_SIZE" envDefault:"100"`
	CatalogMaxPages  int           `env:"BOOKSTORE_API_CATALOG_MAX_PAGES" envDefault:"20"`
	UserAgent        string        `env:"BOOKSTORE_API_USER_AGENT" envDefault:"bookhaven-storefront"`
}
