package types

import (
	"database/sql"
	"errors"
)

// Backend owns a database connection with the fixture loaded into it.
// Callers attach, read or mutate through DB, and detach when done.
type Backend interface {
	// Attach opens the database described by config and, when config.Seed
	// is set, loads the fixture. Returns ErrAlreadyAttached if called twice.
	Attach(config Config) error

	// Detach closes the database. Idempotent.
	Detach() error

	// DB returns the underlying handle. Returns ErrDetached when the
	// backend is not attached.
	DB() (*sql.DB, error)

	// Variant reports which fixture variant the backend serves.
	Variant() Variant
}

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
