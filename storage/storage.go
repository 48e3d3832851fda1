// Package storage opens the relational store and applies the embedded
// schema migrations.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultMaxOpenConns mirrors the fixed pool size the service has
// always run with. Requests beyond it queue on the pool.
const DefaultMaxOpenConns = 10

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Options configure Open.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	PingTimeout  time.Duration
}

// Open builds a *bun.DB for the given driver and verifies it can reach
// the database. The caller owns the returned handle and must Close it.
func Open(ctx context.Context, opts Options) (*bun.DB, error) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = DefaultMaxOpenConns
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = 5 * time.Second
	}

	var db *bun.DB
	switch opts.Driver {
	case DriverSQLite, "":
		sqldb, err := sql.Open(sqliteshim.ShimName, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite serialises writers, a single connection also keeps
		// :memory: databases alive for the lifetime of the handle
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case DriverPostgres:
		sqldb, err := sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		sqldb.SetMaxOpenConns(opts.MaxOpenConns)
		sqldb.SetMaxIdleConns(opts.MaxOpenConns)
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Driver, err)
	}

	return db, nil
}

// Migrate applies every pending migration for driver and returns the
// number of migrations run.
func Migrate(ctx context.Context, db *bun.DB, driver string) (int, error) {
	dialect, dir, err := migrationSource(driver)
	if err != nil {
		return 0, err
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return 0, fmt.Errorf("migrations %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

func migrationSource(driver string) (goose.Dialect, string, error) {
	switch driver {
	case DriverSQLite, "":
		return goose.DialectSQLite3, "migrations/sqlite", nil
	case DriverPostgres:
		return goose.DialectPostgres, "migrations/postgres", nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenMemory returns a migrated in-memory SQLite database. It is meant
// for tests and local experiments.
func OpenMemory(ctx context.Context) (*bun.DB, error) {
	db, err := Open(ctx, Options{Driver: DriverSQLite, DSN: ":memory:"})
	if err != nil {
		return nil, err
	}
	if _, err := Migrate(ctx, db, DriverSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
