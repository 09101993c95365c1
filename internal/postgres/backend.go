package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Backend implements types.Backend on Postgres.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*dbtable.Table
	lastLoad *fixture.LoadReport

	schema       string
	dropOnDetach bool
	adminDSN     string

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

// WithSchema confines the backend to schema, creating it on Attach. When
// drop is set the schema is removed again on Detach.
func WithSchema(schema string, drop bool) Option {
	return func(b *Backend) {
		b.schema = schema
		b.dropOnDetach = drop
	}
}

// NewBackend creates a new Postgres backend instance.
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

// Attach connects and, when config.Seed is set, loads the fixture (the
// Postgres variant unless config.Variant says otherwise).
func (b *Backend) Attach(config types.Config) error {
	return b.AttachContext(context.Background(), config)
}

// AttachContext is Attach with a context bounding connection and load.
func (b *Backend) AttachContext(ctx context.Context, config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Driver != types.DriverPgx && config.Driver != types.DriverPostgres {
		return fmt.Errorf("%w: postgres backend cannot use %s", types.ErrUnknownDriver, config.Driver)
	}

	dsn := config.DSN
	if b.schema != "" {
		admin, err := Open(ctx, config.DSN, config.Driver)
		if err != nil {
			return err
		}
		err = CreateSchema(ctx, admin, b.schema)
		admin.Close()
		if err != nil {
			return err
		}
		if dsn, err = WithSearchPath(config.DSN, b.schema); err != nil {
			return err
		}
		b.adminDSN = config.DSN
	}

	db, err := Open(ctx, dsn, config.Driver)
	if err != nil {
		return err
	}

	variant := config.EffectiveVariant()
	if config.Seed {
		loader := fixture.Loader{Driver: config.Driver, Logger: b.logger, Observer: b.observer}
		report, err := loader.Load(ctx, db, variant, fixture.LoadOptions{Reset: config.Reset})
		if err != nil {
			db.Close()
			return err
		}
		b.lastLoad = &report
	}

	for _, name := range types.StandardTableNames {
		t, err := dbtable.New(db, dialect.Postgres, name)
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
	b.logger.Debug("postgres backend attached", "driver", config.Driver, "schema", b.schema, "variant", string(variant))
	return nil
}

// Detach closes the connection pool and drops the schema if requested.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.db.Close()
	if b.dropOnDetach && b.schema != "" {
		ctx := context.Background()
		if admin, openErr := Open(ctx, b.adminDSN, b.config.Driver); openErr == nil {
			if dropErr := DropSchema(ctx, admin, b.schema); dropErr != nil && err == nil {
				err = dropErr
			}
			admin.Close()
		} else if err == nil {
			err = openErr
		}
	}
	b.db = nil
	b.attached = false
	b.tables = make(map[string]*dbtable.Table)
	b.lastLoad = nil
	return err
}

// DB returns the open connection pool.
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

// Driver returns the configured database/sql driver name.
func (b *Backend) Driver() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.Driver
}

// Schema returns the schema the backend is confined to, if any.
func (b *Backend) Schema() string { return b.schema }

// Table returns the gateway for a fixture table.
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
