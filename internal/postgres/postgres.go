// Package postgres implements the Postgres backend. The default driver is
// pgx through its database/sql adapter; lib/pq can be selected instead.
// Each backend can run inside its own schema so parallel test runs do not
// collide.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/lib/pq"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

const defaultDriver = types.DriverPgx

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// Open connects to dsn with driver ("pgx" or "postgres") and pings the
// server. An empty driver means pgx; an empty dsn is ErrDSNEmpty.
func Open(ctx context.Context, dsn, driver string) (*sql.DB, error) {
	if driver == "" {
		driver = defaultDriver
	}
	if driver != types.DriverPgx && driver != types.DriverPostgres {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownDriver, driver)
	}
	if dsn == "" {
		return nil, types.ErrDSNEmpty
	}
	openMu.Lock()
	db, err := sqlOpen(driver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// IsolatedSchema returns a fresh schema name of the form prefix_<uuid>.
// The name is lower case and needs no quoting, though callers quote it
// anyway when building statements.
func IsolatedSchema(prefix string) string {
	id := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	if prefix == "" {
		prefix = "holocron"
	}
	return strings.ToLower(prefix) + "_" + id
}

// WithSearchPath returns dsn with search_path set to schema. Both URL and
// key=value connection strings are supported; pgx and lib/pq forward the
// parameter to the server on every new connection.
func WithSearchPath(dsn, schema string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parsing dsn: %w", err)
		}
		q := u.Query()
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	if strings.TrimSpace(dsn) == "" {
		return "search_path=" + schema, nil
	}
	return dsn + " search_path=" + schema, nil
}

// CreateSchema creates schema if it does not exist.
func CreateSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(schema)); err != nil {
		return fmt.Errorf("creating schema %s: %w", schema, err)
	}
	return nil
}

// DropSchema removes schema and everything in it.
func DropSchema(ctx context.Context, db *sql.DB, schema string) error {
	if _, err := db.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+pq.QuoteIdentifier(schema)+" CASCADE"); err != nil {
		return fmt.Errorf("dropping schema %s: %w", schema, err)
	}
	return nil
}
