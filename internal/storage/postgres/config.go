package postgres

import "time"

// Config holds Postgres connection and pool settings
type Config struct {
	// DSN is a lib/pq connection string or postgres:// URL
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// PingTimeout bounds the connectivity check in New
	PingTimeout time.Duration
}

// DefaultConfig returns sensible pool defaults; DSN must still be set
func DefaultConfig() Config {
	return Config{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}
