package fixture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

func TestScript(t *testing.T) {
	generic, err := Script(types.VariantGeneric)
	require.NoError(t, err)
	assert.Contains(t, generic, "released_year")
	assert.Contains(t, generic, "CHECK (has_force IN (0, 1))")
	assert.NotContains(t, generic, "DROP TABLE")

	pg, err := Script(types.VariantPostgres)
	require.NoError(t, err)
	assert.Contains(t, pg, "release_year")
	assert.Contains(t, pg, "SERIAL PRIMARY KEY")
	assert.Contains(t, pg, "DROP TABLE IF EXISTS characters")

	_, err = Script("oracle")
	assert.ErrorIs(t, err, types.ErrUnknownVariant)
}

func TestStatements(t *testing.T) {
	tests := []struct {
		variant    types.Variant
		wantSchema []string
		wantSeed   []string
	}{
		{
			variant:    types.VariantGeneric,
			wantSchema: []string{"CREATE TABLE movies", "CREATE TABLE characters"},
			wantSeed:   []string{"INSERT INTO movies", "INSERT INTO characters"},
		},
		{
			variant: types.VariantPostgres,
			wantSchema: []string{
				"DROP TABLE IF EXISTS characters",
				"DROP TABLE IF EXISTS movies",
				"CREATE TABLE movies",
				"CREATE TABLE characters",
			},
			wantSeed: []string{"INSERT INTO movies", "INSERT INTO characters"},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			all, err := Statements(tt.variant)
			require.NoError(t, err)
			assert.Len(t, all, len(tt.wantSchema)+len(tt.wantSeed))

			schema, err := Schema(tt.variant)
			require.NoError(t, err)
			require.Len(t, schema, len(tt.wantSchema))
			for i, prefix := range tt.wantSchema {
				assert.True(t, strings.HasPrefix(schema[i], prefix), "schema[%d] = %q", i, summarize(schema[i]))
			}

			seed, err := Seed(tt.variant)
			require.NoError(t, err)
			require.Len(t, seed, len(tt.wantSeed))
			for i, prefix := range tt.wantSeed {
				assert.True(t, strings.HasPrefix(seed[i], prefix), "seed[%d] = %q", i, summarize(seed[i]))
			}
		})
	}
}

func TestSeedRowCounts(t *testing.T) {
	for _, v := range types.Variants {
		t.Run(string(v), func(t *testing.T) {
			seed, err := Seed(v)
			require.NoError(t, err)
			require.Len(t, seed, 2)
			// One parenthesized row per line after VALUES.
			assert.Equal(t, MovieCount, strings.Count(seed[0], "\n    ("))
			assert.Equal(t, CharacterCount, strings.Count(seed[1], "\n    ("))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "INSERT INTO movies (id, name, episode, director, released...",
		summarize("INSERT INTO movies (id, name, episode, director, released_year, chronology)\nVALUES"))
	assert.Equal(t, "SELECT 1", summarize("  SELECT 1  "))
}
