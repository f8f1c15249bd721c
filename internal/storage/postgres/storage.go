package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/mcoot/robogamehub/internal/dependencies/clock"
	"github.com/mcoot/robogamehub/internal/storage"
)

// Storage is a Postgres implementation of storage.Storage backed by a
// database/sql pool
type Storage struct {
	db    *sql.DB
	clock clock.Clock
}

// New opens a connection pool, configures it and verifies connectivity
func New(cfg Config) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, mapError("ping database", err)
	}

	return NewWithDB(db, clock.New()), nil
}

// NewWithDB wraps an existing pool (for testing)
func NewWithDB(db *sql.DB, clk clock.Clock) *Storage {
	return &Storage{db: db, clock: clk}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// DB exposes the pool so the session store can share it
func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return mapError("ping", err)
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}
