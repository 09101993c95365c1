package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// LoadOptions controls a single Load call.
type LoadOptions struct {
	// Reset drops the fixture tables (characters first) before loading.
	// Without it the generic variant refuses to load over existing tables.
	Reset bool
}

// LoadReport describes a completed load.
type LoadReport struct {
	RunID      string        `json:"run_id"`
	Variant    types.Variant `json:"variant"`
	Movies     int           `json:"movies"`
	Characters int           `json:"characters"`
	Duration   time.Duration `json:"duration"`
}

// Observer receives the outcome of every Load call. The metrics package
// implements it.
type Observer interface {
	ObserveLoad(variant types.Variant, report LoadReport, err error)
}

// Loader executes a fixture script against a database.
// The zero value loads into SQLite and logs nothing.
type Loader struct {
	// Driver is the database/sql driver name the db was opened with. It
	// selects the catalog query used to detect existing tables and rejects
	// variants the engine cannot run. Empty means "sqlite".
	Driver   string
	Logger   *slog.Logger
	Observer Observer
}

func (l *Loader) driver() string {
	if l.Driver == "" {
		return types.DriverSQLite
	}
	return l.Driver
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}

// Load creates the fixture tables and seeds them in one transaction. Any
// failing statement aborts the load, rolls back and returns an error naming
// the statement; the database is left as it was.
func (l *Loader) Load(ctx context.Context, db *sql.DB, v types.Variant, opts LoadOptions) (LoadReport, error) {
	report, err := l.load(ctx, db, v, opts)
	if l.Observer != nil {
		l.Observer.ObserveLoad(v, report, err)
	}
	return report, err
}

func (l *Loader) load(ctx context.Context, db *sql.DB, v types.Variant, opts LoadOptions) (LoadReport, error) {
	if !v.SupportsDriver(l.driver()) {
		return LoadReport{}, fmt.Errorf("%w: %s on %s", types.ErrVariantUnsupported, v, l.driver())
	}
	stmts, err := Statements(v)
	if err != nil {
		return LoadReport{}, err
	}
	return l.run(ctx, db, v, stmts, opts)
}

// run executes stmts inside a transaction and counts the seeded rows.
func (l *Loader) run(ctx context.Context, db *sql.DB, v types.Variant, stmts []string, opts LoadOptions) (LoadReport, error) {
	start := time.Now()
	report := LoadReport{
		RunID:   uuid.Must(uuid.NewV7()).String(),
		Variant: v,
	}
	log := l.logger().With("run_id", report.RunID, "variant", string(v))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if opts.Reset {
		for _, table := range types.DropOrder {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return report, fmt.Errorf("dropping %s: %w", table, err)
			}
		}
		log.Debug("dropped fixture tables")
	} else if !v.HasDropGuard() {
		exist, err := l.tablesExist(ctx, tx)
		if err != nil {
			return report, err
		}
		if exist {
			return report, fmt.Errorf("%w: load with reset to replace them", types.ErrTablesExist)
		}
	}

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			log.Error("fixture statement failed", "index", i+1, "statement", summarize(stmt), "error", err)
			return report, fmt.Errorf("executing statement %d (%s): %w", i+1, summarize(stmt), err)
		}
	}

	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&report.Movies); err != nil {
		return report, fmt.Errorf("counting movies: %w", err)
	}
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM characters").Scan(&report.Characters); err != nil {
		return report, fmt.Errorf("counting characters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("committing fixture: %w", err)
	}
	report.Duration = time.Since(start)

	log.Info("fixture loaded",
		"movies", report.Movies,
		"characters", report.Characters,
		"duration", report.Duration,
	)
	return report, nil
}

// tablesExist reports whether either fixture table is already present.
func (l *Loader) tablesExist(ctx context.Context, tx *sql.Tx) (bool, error) {
	var query string
	switch l.driver() {
	case types.DriverSQLite:
		query = `SELECT COUNT(*) FROM sqlite_master
			WHERE type = 'table' AND name IN ('movies', 'characters')`
	case types.DriverPgx, types.DriverPostgres:
		query = `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name IN ('movies', 'characters')`
	default:
		return false, fmt.Errorf("%w: %s", types.ErrUnknownDriver, l.driver())
	}
	var n int
	if err := tx.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return false, fmt.Errorf("checking for existing tables: %w", err)
	}
	return n > 0, nil
}

// Drop removes both fixture tables if present. Characters are dropped first
// because they reference movies.
func Drop(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range types.DropOrder {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}
	return tx.Commit()
}
