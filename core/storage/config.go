package storage

import "time"

// Config selects and configures the storage backend.
type Config struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"memory"` // memory, file or redis
	Dir    string `env:"STORAGE_DIR" envDefault:"./data/storage"`
	// TTL expires idle visitor state in backends that support it. Zero keeps it forever.
	TTL time.Duration `env:"STORAGE_TTL" envDefault:"720h"`
}
