package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/greenfield-academy/portal/pkg/config"
)

const connectTimeout = 10 * time.Second

// NewPostgres opens a pooled connection to the configured database and
// verifies it with a bounded ping.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	tunePool(db, cfg)
	return db, nil
}

func dsn(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// tunePool applies the configured limits. Idle connections default to
// half the open limit so a quiet portal does not hold the whole pool.
func tunePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	open := cfg.MaxOpenConns
	if open <= 0 {
		open = 20
	}
	idle := cfg.MaxIdleConns
	if idle <= 0 {
		idle = open / 2
	}

	db.SetMaxOpenConns(open)
	db.SetMaxIdleConns(idle)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)
}
