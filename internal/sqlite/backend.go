// Package sqlite implements the SQLite backend: it opens a database through
// modernc.org/sqlite with foreign keys enforced and loads the generic
// fixture into it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// DatabaseFile is the file name used inside Config.DataDir when no DSN is
// configured.
const DatabaseFile = "holocron.db"

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Open opens the SQLite database at dsn with foreign key enforcement on
// every connection. An empty dsn or ":memory:" yields an in-memory database
// pinned to a single connection so all callers see the same data.
func Open(dsn string) (*sql.DB, error) {
	memory := dsn == "" || dsn == MemoryDSN
	if memory {
		dsn = MemoryDSN
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open(types.DriverSQLite, dsn+sep+"_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Backend implements types.Backend on SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*dbtable.Table
	lastLoad *fixture.LoadReport

	logger   *slog.Logger
	observer fixture.Observer
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithObserver reports every fixture load to o.
func WithObserver(o fixture.Observer) Option {
	return func(b *Backend) { b.observer = o }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables: make(map[string]*dbtable.Table),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the database and, when config.Seed is set, loads the
// fixture. The DSN comes from config.DSN, then DataDir/holocron.db, then
// an in-memory database. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	return b.AttachContext(context.Background(), config)
}

// AttachContext is Attach with a context bounding the fixture load.
func (b *Backend) AttachContext(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Driver != types.DriverSQLite {
		return fmt.Errorf("%w: sqlite backend cannot use %s", types.ErrUnknownDriver, config.Driver)
	}

	dsn, err := resolveDSN(config)
	if err != nil {
		return err
	}
	db, err := Open(dsn)
	if err != nil {
		return err
	}

	variant := config.EffectiveVariant()
	if config.Seed {
		loader := fixture.Loader{Driver: types.DriverSQLite, Logger: b.logger, Observer: b.observer}
		report, err := loader.Load(ctx, db, variant, fixture.LoadOptions{Reset: config.Reset})
		if err != nil {
			db.Close()
			return err
		}
		b.lastLoad = &report
	}

	for _, name := range types.StandardTableNames {
		t, err := dbtable.New(db, dialect.SQLite, name)
		if err != nil {
			db.Close()
			return err
		}
		b.tables[name] = t
	}

	config.Variant = variant
	b.config = config
	b.db = db
	b.attached = true
	b.logger.Debug("sqlite backend attached", "dsn", dsn, "variant", string(variant))
	return nil
}

func resolveDSN(config types.Config) (string, error) {
	if config.DSN != "" {
		return config.DSN, nil
	}
	if config.DataDir == "" {
		return MemoryDSN, nil
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	return filepath.Join(config.DataDir, DatabaseFile), nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.attached = false
	b.tables = make(map[string]*dbtable.Table)
	b.lastLoad = nil
	return err
}

// DB returns the open database handle.
func (b *Backend) DB() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

// Variant reports the fixture variant the backend was attached with.
func (b *Backend) Variant() types.Variant {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Variant
}

// Driver returns the database/sql driver name.
func (b *Backend) Driver() string { return types.DriverSQLite }

// Table returns the gateway for a fixture table.
// Returns ErrTableNotFound for unknown names and ErrDetached when detached.
func (b *Backend) Table(name string) (*dbtable.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// LastLoad returns the report of the load performed by Attach, if any.
func (b *Backend) LastLoad() (fixture.LoadReport, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lastLoad == nil {
		return fixture.LoadReport{}, false
	}
	return *b.lastLoad, true
}
