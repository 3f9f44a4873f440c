package config

import "time"

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"golinks"`
	Password string `env:"PASSWORD" envDefault:"golinks"`
	Name     string `env:"NAME"     envDefault:"golinks"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the resolve cache.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}

// CacheConfig contains redirect-resolution cache configuration.
type CacheConfig struct {
	// Enabled toggles the Redis-backed name lookup cache on the redirect path.
	// When disabled, every resolution hits Postgres directly.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// LinkTTL is the TTL for cached name to target-URL entries.
	LinkTTL time.Duration `env:"CACHE_LINK_TTL" envDefault:"5m"`
}
