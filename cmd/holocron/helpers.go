package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/holocron/internal/catalog"
	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/internal/metrics"
	"github.com/mesh-intelligence/holocron/internal/paths"
	"github.com/mesh-intelligence/holocron/internal/postgres"
	"github.com/mesh-intelligence/holocron/internal/sqlite"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// backend is what the commands need from either storage backend.
type backend interface {
	types.Backend
	Table(name string) (*dbtable.Table, error)
	LastLoad() (fixture.LoadReport, bool)
	Driver() string
}

// config builds the backend config from flags, env and config.yaml.
func (a *app) config() (types.Config, error) {
	cfg := types.Config{
		Driver: a.cfg.GetString(cfgKeyDriver),
		DSN:    a.cfg.GetString(cfgKeyDSN),
	}
	if raw := a.cfg.GetString(cfgKeyVariant); raw != "" {
		v, err := types.ParseVariant(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Variant = v
	}
	if cfg.Driver == types.DriverSQLite && cfg.DSN == "" {
		dir, err := paths.ResolveDataDir(a.flagDataDir, a.cfg.GetString(cfgKeyDataDir))
		if err != nil {
			return cfg, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dir
	}
	return cfg, nil
}

// attach opens the configured backend. With seed set the fixture is
// loaded and reported to m.
func (a *app) attach(ctx context.Context, seed, reset bool, m *metrics.Metrics) (backend, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	cfg.Seed, cfg.Reset = seed, reset
	if m == nil {
		m = metrics.New(false)
	}

	switch cfg.Driver {
	case types.DriverSQLite:
		b := sqlite.NewBackend(sqlite.WithLogger(a.logger), sqlite.WithObserver(m))
		if err := b.AttachContext(ctx, cfg); err != nil {
			return nil, err
		}
		return b, nil
	case types.DriverPgx, types.DriverPostgres:
		opts := []postgres.Option{postgres.WithLogger(a.logger), postgres.WithObserver(m)}
		if schema := a.cfg.GetString(cfgKeySchema); schema != "" {
			opts = append(opts, postgres.WithSchema(schema, false))
		}
		b := postgres.NewBackend(opts...)
		if err := b.AttachContext(ctx, cfg); err != nil {
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownDriver, cfg.Driver)
}

// openCatalog wraps an attached backend in a typed catalog.
func openCatalog(b backend) (*catalog.Catalog, error) {
	db, err := b.DB()
	if err != nil {
		return nil, err
	}
	return catalog.ForDriver(db, b.Driver(), b.Variant())
}

// exitCode maps errors caused by user input to exitUserError and
// everything else to exitSysError.
func exitCode(err error) int {
	for _, userErr := range []error{
		types.ErrUnknownVariant,
		types.ErrUnknownDriver,
		types.ErrVariantUnsupported,
		types.ErrDSNEmpty,
		types.ErrTablesExist,
		types.ErrTableNotFound,
		types.ErrNotFound,
		types.ErrUnsafeSQL,
		errUsage,
	} {
		if errors.Is(err, userErr) {
			return exitUserError
		}
	}
	return exitSysError
}

// errUsage marks malformed command arguments.
var errUsage = errors.New("usage")

// tableArg validates a table name argument.
func tableArg(name string) (string, error) {
	if !types.IsStandardTable(name) {
		return "", fmt.Errorf("%w: %q (valid: %s)", types.ErrTableNotFound, name,
			strings.Join(types.StandardTableNames, ", "))
	}
	return name, nil
}
