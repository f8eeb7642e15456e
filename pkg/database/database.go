// Package database wraps database/sql with the pgx stdlib driver, bounded
// connection pooling, and retrying startup connectivity.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
)

// Database wraps a *sql.DB connection pool.
type Database struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewPool opens a pooled connection to Postgres and verifies connectivity.
// Initial connectivity is retried up to cfg.DBRetryMax additional times with
// exponentially increasing delay before giving up. Pool sizing, idle timeout,
// and the acquire timeout all come from cfg.
func NewPool(ctx context.Context, cfg *config.Config, log logger.Logger) (*Database, error) {
	dsn, err := ConnString(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBPoolMax)
	db.SetMaxIdleConns(cfg.DBPoolMinIdle)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBPoolIdleSeconds) * time.Second)

	d := &Database{
		db:             db,
		acquireTimeout: time.Duration(cfg.DBPoolAcquireSeconds) * time.Second,
	}

	delay := time.Duration(cfg.DBRetryBaseMillis) * time.Millisecond
	attempts := cfg.DBRetryMax + 1
	for attempt := 1; ; attempt++ {
		err = d.Ping(ctx)
		if err == nil {
			return d, nil
		}
		if attempt >= attempts {
			break
		}
		log.Warn("database unreachable, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	_ = db.Close()
	return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
}

// ConnString builds the Postgres DSN from cfg. DB_SSL=true forces
// sslmode=require, overriding any sslmode in DATABASE_URL; when false the
// URL's own sslmode stands.
func ConnString(cfg *config.Config) (string, error) {
	if !cfg.DBSSL {
		return cfg.DatabaseURL, nil
	}
	u, err := url.Parse(cfg.DatabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "require")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DB returns the underlying *sql.DB.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping verifies connectivity, bounded by the configured acquire timeout.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.acquireTimeout)
	defer cancel()
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic. The error from fn is returned unwrapped so callers can
// match domain sentinels with errors.Is.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close shuts the pool down.
func (d *Database) Close() {
	_ = d.db.Close()
}

// IsConnectionError reports whether err stems from the connection layer
// (unreachable host, dropped connection, exhausted acquire timeout) rather
// than from query execution. The error formatter maps these to 503.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
