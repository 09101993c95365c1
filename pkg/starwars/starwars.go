// Package starwars is the public entry point for consumers that want the
// Star Wars sample dataset in their own tests. It exposes backend
// factories and a few shortcuts while keeping the loader internal.
//
// Example:
//
//	func TestQueries(t *testing.T) {
//	    db := starwars.MustOpen(t)
//	    // db holds 9 movies and 42 characters; mutate freely.
//	}
package starwars

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/internal/postgres"
	"github.com/mesh-intelligence/holocron/internal/sqlite"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Row counts of a freshly loaded fixture.
const (
	Movies     = fixture.MovieCount
	Characters = fixture.CharacterCount
)

// NewBackend creates a backend for driver ("sqlite", "pgx" or "postgres").
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend, _ := starwars.NewBackend("sqlite")
//	err := backend.Attach(types.Config{
//	    Driver:  "sqlite",
//	    DataDir: ".holocron",
//	    Seed:    true,
//	})
//	defer backend.Detach()
func NewBackend(driver string) (types.Backend, error) {
	switch driver {
	case types.DriverSQLite, "":
		return sqlite.NewBackend(), nil
	case types.DriverPgx, types.DriverPostgres:
		return postgres.NewBackend(), nil
	}
	return nil, types.ErrUnknownDriver
}

// Table returns a gateway for the fixture table name ("movies" or
// "characters") on db, spelled for driver.
//
// Example:
//
//	chars, _ := starwars.Table(db, "sqlite", "characters")
//	droids, _ := chars.Find(ctx, dbtable.Filter{Eq: map[string]any{"character_type": "Droid"}})
func Table(db *sql.DB, driver, name string) (*dbtable.Table, error) {
	if name != types.MoviesTable && name != types.CharactersTable {
		return nil, types.ErrTableNotFound
	}
	d, err := dialect.ForDriver(driver)
	if err != nil {
		return nil, err
	}
	return dbtable.New(db, d, name)
}

// Script returns the embedded SQL of variant.
func Script(v types.Variant) (string, error) {
	return fixture.Script(v)
}

// OpenSQLite opens the SQLite database at path (":memory:" or "" for an
// in-memory one) and loads the generic fixture into it.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	var loader fixture.Loader
	if _, err := loader.Load(ctx, db, types.VariantGeneric, fixture.LoadOptions{}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// MustOpen returns a freshly loaded in-memory database that is closed when
// tb finishes. Every call yields an independent copy.
func MustOpen(tb testing.TB) *sql.DB {
	tb.Helper()
	db, err := OpenSQLite(context.Background(), sqlite.MemoryDSN)
	if err != nil {
		tb.Fatalf("loading star wars fixture: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}

// Verify reports whether db still holds an unmodified copy of variant.
func Verify(ctx context.Context, db *sql.DB, v types.Variant) error {
	_, err := fixture.Verify(ctx, db, v)
	return err
}
