package fixture

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// openTestDB opens a file-backed SQLite database in a temp dir with foreign
// keys enforced.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "starwars.db") + "?_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// loadedDB returns a database with the generic fixture loaded.
func loadedDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	var l Loader
	_, err := l.Load(context.Background(), db, types.VariantGeneric, LoadOptions{})
	require.NoError(t, err)
	return db
}

func tableCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('movies', 'characters')`).Scan(&n)
	require.NoError(t, err)
	return n
}

type recordingObserver struct {
	reports []LoadReport
	errs    []error
}

func (o *recordingObserver) ObserveLoad(_ types.Variant, r LoadReport, err error) {
	o.reports = append(o.reports, r)
	o.errs = append(o.errs, err)
}

func TestLoad(t *testing.T) {
	db := openTestDB(t)
	obs := &recordingObserver{}
	l := Loader{Driver: types.DriverSQLite, Observer: obs}

	report, err := l.Load(context.Background(), db, types.VariantGeneric, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, types.VariantGeneric, report.Variant)
	assert.Equal(t, MovieCount, report.Movies)
	assert.Equal(t, CharacterCount, report.Characters)
	assert.NotEmpty(t, report.RunID)
	assert.Positive(t, report.Duration)

	require.Len(t, obs.reports, 1)
	assert.NoError(t, obs.errs[0])
	assert.Equal(t, report.RunID, obs.reports[0].RunID)
}

func TestLoadRefusesExistingTables(t *testing.T) {
	db := loadedDB(t)
	obs := &recordingObserver{}
	l := Loader{Observer: obs}

	_, err := l.Load(context.Background(), db, types.VariantGeneric, LoadOptions{})
	require.ErrorIs(t, err, types.ErrTablesExist)

	require.Len(t, obs.errs, 1)
	assert.ErrorIs(t, obs.errs[0], types.ErrTablesExist)

	// The refused load leaves the first load untouched.
	_, err = Verify(context.Background(), db, types.VariantGeneric)
	assert.NoError(t, err)
}

func TestLoadResetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	var l Loader

	_, err := l.Load(ctx, db, types.VariantGeneric, LoadOptions{Reset: true})
	require.NoError(t, err)
	first, err := TakeSnapshot(ctx, db)
	require.NoError(t, err)

	// Mutate, then reload: the fixture comes back unchanged.
	_, err = db.Exec("DELETE FROM characters WHERE id = 42")
	require.NoError(t, err)

	_, err = l.Load(ctx, db, types.VariantGeneric, LoadOptions{Reset: true})
	require.NoError(t, err)
	second, err := TakeSnapshot(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second[types.MoviesTable], MovieCount)
	assert.Len(t, second[types.CharactersTable], CharacterCount)
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	var l Loader

	stmts, err := Statements(types.VariantGeneric)
	require.NoError(t, err)
	stmts = append(stmts, "INSERT INTO starships (name) VALUES ('Millennium Falcon')")

	_, err = l.run(ctx, db, types.VariantGeneric, stmts, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing statement 5")

	assert.Zero(t, tableCount(t, db), "failed load must not leave tables behind")
}

func TestLoadRollsBackOnConstraintViolation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	var l Loader

	stmts := []string{
		"CREATE TABLE movies (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE characters (id INTEGER PRIMARY KEY, name TEXT NOT NULL)",
		"INSERT INTO movies (id, name) VALUES (1, 'Star Wars (A New Hope)')",
		"INSERT INTO characters (id, name) VALUES (1, NULL)",
	}
	_, err := l.run(ctx, db, types.VariantGeneric, stmts, LoadOptions{})
	require.Error(t, err)
	assert.Zero(t, tableCount(t, db))
}

func TestLoadPostgresVariantOnSQLite(t *testing.T) {
	db := openTestDB(t)
	var l Loader

	_, err := l.Load(context.Background(), db, types.VariantPostgres, LoadOptions{})
	require.ErrorIs(t, err, types.ErrVariantUnsupported)
	assert.Zero(t, tableCount(t, db))
}

func TestLoadUnknownDriver(t *testing.T) {
	db := openTestDB(t)
	l := Loader{Driver: "mysql"}

	_, err := l.Load(context.Background(), db, types.VariantGeneric, LoadOptions{})
	require.ErrorIs(t, err, types.ErrUnknownDriver)
}

func TestLoadCanceledContext(t *testing.T) {
	db := openTestDB(t)
	var l Loader

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, db, types.VariantGeneric, LoadOptions{})
	require.Error(t, err)
	assert.Zero(t, tableCount(t, db))
}

func TestDrop(t *testing.T) {
	db := loadedDB(t)
	require.NoError(t, Drop(context.Background(), db))
	assert.Zero(t, tableCount(t, db))

	// Dropping again is a no-op.
	require.NoError(t, Drop(context.Background(), db))
}

func TestForeignKeysEnforced(t *testing.T) {
	db := loadedDB(t)
	_, err := db.Exec(`INSERT INTO characters (name, character_type, first_appeared_movie_id, has_force)
		VALUES ('Dengar', 'Human', 99, 0)`)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO characters (name, character_type, has_force)
		VALUES ('Dengar', 'Human', 2)`)
	assert.Error(t, err, "has_force is constrained to 0 or 1")
}

func TestLoadLogging(t *testing.T) {
	var global bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&global, nil)))
	defer slog.SetDefault(prev)

	var silent Loader
	_, err := silent.Load(context.Background(), openTestDB(t), types.VariantGeneric, LoadOptions{})
	require.NoError(t, err)
	assert.Empty(t, global.String())

	var buf bytes.Buffer
	l := Loader{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	report, err := l.Load(context.Background(), openTestDB(t), types.VariantGeneric, LoadOptions{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "fixture loaded")
	assert.Contains(t, buf.String(), report.RunID)
	assert.Empty(t, global.String())
}
