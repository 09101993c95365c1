package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Driver:  types.DriverSQLite,
		DataDir: tmpDir,
		Seed:    true,
	}

	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	dbPath := filepath.Join(tmpDir, DatabaseFile)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", DatabaseFile)
	}

	if err := b.Attach(config); err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	if got := b.Variant(); got != types.VariantGeneric {
		t.Errorf("Variant() = %q, want generic", got)
	}
	report, ok := b.LastLoad()
	if !ok {
		t.Fatal("LastLoad() reported no load")
	}
	if report.Movies != fixture.MovieCount || report.Characters != fixture.CharacterCount {
		t.Errorf("loaded %d movies and %d characters", report.Movies, report.Characters)
	}
}

func TestBackend_AttachRejectsPostgresVariant(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Driver: types.DriverSQLite, Variant: types.VariantPostgres, Seed: true})
	if !errors.Is(err, types.ErrVariantUnsupported) {
		t.Fatalf("expected ErrVariantUnsupported, got %v", err)
	}
	if _, err := b.DB(); err != types.ErrDetached {
		t.Errorf("expected ErrDetached after failed attach, got %v", err)
	}
}

func TestBackend_AttachRejectsOtherDrivers(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Driver: types.DriverPgx, DSN: "postgres://localhost/holocron"})
	if !errors.Is(err, types.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestBackend_ReattachExistingFile(t *testing.T) {
	tmpDir := t.TempDir()
	config := types.Config{Driver: types.DriverSQLite, DataDir: tmpDir, Seed: true}

	b := NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("first Attach failed: %v", err)
	}
	b.Detach()

	// The tables survive in the file, so a second seed without reset is refused.
	b = NewBackend()
	if err := b.Attach(config); !errors.Is(err, types.ErrTablesExist) {
		t.Fatalf("expected ErrTablesExist, got %v", err)
	}

	config.Reset = true
	if err := b.Attach(config); err != nil {
		t.Fatalf("Attach with reset failed: %v", err)
	}
	defer b.Detach()

	// Attaching without seeding sees the stored data.
	other := NewBackend()
	if err := other.Attach(types.Config{Driver: types.DriverSQLite, DataDir: tmpDir}); err != nil {
		t.Fatalf("read-only Attach failed: %v", err)
	}
	defer other.Detach()
	db, err := other.DB()
	if err != nil {
		t.Fatalf("DB failed: %v", err)
	}
	if _, err := fixture.Verify(context.Background(), db, types.VariantGeneric); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestBackend_Detach(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{Driver: types.DriverSQLite, Seed: true}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach failed: %v", err)
	}
	if err := b.Detach(); err != nil {
		t.Errorf("second Detach failed: %v", err)
	}

	if _, err := b.DB(); err != types.ErrDetached {
		t.Errorf("expected ErrDetached, got %v", err)
	}
	if _, err := b.Table(types.MoviesTable); err != types.ErrDetached {
		t.Errorf("expected ErrDetached, got %v", err)
	}
}

func TestBackend_Table(t *testing.T) {
	b := NewBackend()
	if err := b.Attach(types.Config{Driver: types.DriverSQLite, Seed: true}); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	defer b.Detach()

	if _, err := b.Table("starships"); err != types.ErrTableNotFound {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}

	movies, err := b.Table(types.MoviesTable)
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	row, err := movies.First(context.Background(), dbtable.Filter{Eq: map[string]any{"chronology": 1}})
	if err != nil {
		t.Fatalf("First failed: %v", err)
	}
	if got := row.String("name"); got != fixture.FirstInChronology {
		t.Errorf("chronology 1 = %q, want %q", got, fixture.FirstInChronology)
	}
}

func TestOpen_MemorySharesOneConnection(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE probe (id INTEGER)"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// A second statement on a fresh pool connection would not see the table.
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM probe").Scan(&n); err != nil {
		t.Fatalf("probe query failed: %v", err)
	}
	if stats := db.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", stats.MaxOpenConnections)
	}
}

func TestOpen_ForeignKeysOn(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var on int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&on); err != nil {
		t.Fatalf("pragma query failed: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}
