package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holocron/internal/fixture"
	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// liveDSN returns the server used by the tests below, skipping when none is
// configured.
func liveDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("HOLOCRON_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HOLOCRON_TEST_POSTGRES_DSN not set")
	}
	return dsn
}

func attachIsolated(t *testing.T, cfg types.Config) *Backend {
	t.Helper()
	b := NewBackend(WithSchema(IsolatedSchema("holocron_test"), true))
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestLive_LoadAndVerify(t *testing.T) {
	dsn := liveDSN(t)
	ctx := context.Background()

	for _, drv := range []string{types.DriverPgx, types.DriverPostgres} {
		t.Run(drv, func(t *testing.T) {
			b := attachIsolated(t, types.Config{Driver: drv, DSN: dsn, Seed: true})
			assert.Equal(t, types.VariantPostgres, b.Variant())

			db, err := b.DB()
			require.NoError(t, err)
			report, err := fixture.Verify(ctx, db, types.VariantPostgres)
			require.NoError(t, err, "%+v", report.Failed())

			load, ok := b.LastLoad()
			require.True(t, ok)
			assert.Equal(t, fixture.CharacterCount, load.Characters)
		})
	}
}

func TestLive_SerialContinuesAfterSeed(t *testing.T) {
	dsn := liveDSN(t)
	ctx := context.Background()
	b := attachIsolated(t, types.Config{Driver: types.DriverPgx, DSN: dsn, Seed: true})

	characters, err := b.Table(types.CharactersTable)
	require.NoError(t, err)
	id, err := characters.Insert(ctx, dbtable.Row{
		"name":           "Grogu",
		"character_type": "Alien",
		"has_force":      true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, fixture.CharacterCount+1, id)

	movies, err := b.Table(types.MoviesTable)
	require.NoError(t, err)
	id, err = movies.Insert(ctx, dbtable.Row{"name": "Solo", "chronology": 10})
	require.NoError(t, err)
	assert.EqualValues(t, fixture.MovieCount+1, id)
}

func TestLive_ReloadIsIdempotent(t *testing.T) {
	dsn := liveDSN(t)
	ctx := context.Background()
	b := attachIsolated(t, types.Config{Driver: types.DriverPgx, DSN: dsn, Seed: true})
	db, err := b.DB()
	require.NoError(t, err)

	before, err := fixture.TakeSnapshot(ctx, db)
	require.NoError(t, err)

	loader := fixture.Loader{Driver: types.DriverPgx}
	_, err = loader.Load(ctx, db, types.VariantPostgres, fixture.LoadOptions{})
	require.NoError(t, err)

	after, err := fixture.TakeSnapshot(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLive_GenericVariant(t *testing.T) {
	dsn := liveDSN(t)
	ctx := context.Background()
	b := attachIsolated(t, types.Config{Driver: types.DriverPgx, DSN: dsn, Variant: types.VariantGeneric, Seed: true})
	db, err := b.DB()
	require.NoError(t, err)

	_, err = fixture.Verify(ctx, db, types.VariantGeneric)
	require.NoError(t, err)

	loader := fixture.Loader{Driver: types.DriverPgx}
	_, err = loader.Load(ctx, db, types.VariantGeneric, fixture.LoadOptions{})
	require.ErrorIs(t, err, types.ErrTablesExist)
}
