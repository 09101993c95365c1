// Package catalog reads the fixture tables into typed values. It hides the
// differences between the two variants: the year column name and the
// storage of has_force.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/holocron/pkg/dbtable"
	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Catalog gives typed access to a loaded fixture.
type Catalog struct {
	variant    types.Variant
	movies     *dbtable.Table
	characters *dbtable.Table
}

// New builds a catalog over db, which must hold variant v. The dialect
// decides the placeholder syntax of generated queries.
func New(db *sql.DB, d dialect.Dialect, v types.Variant) (*Catalog, error) {
	movies, err := dbtable.New(db, d, types.MoviesTable)
	if err != nil {
		return nil, err
	}
	characters, err := dbtable.New(db, d, types.CharactersTable)
	if err != nil {
		return nil, err
	}
	return &Catalog{variant: v, movies: movies, characters: characters}, nil
}

// ForDriver is New with the dialect looked up from the driver name.
func ForDriver(db *sql.DB, driver string, v types.Variant) (*Catalog, error) {
	d, err := dialect.ForDriver(driver)
	if err != nil {
		return nil, err
	}
	return New(db, d, v)
}

// Variant returns the variant the catalog reads.
func (c *Catalog) Variant() types.Variant { return c.variant }

// Movies returns every movie in id (release) order.
func (c *Catalog) Movies(ctx context.Context) ([]types.Movie, error) {
	return c.movieList(ctx, "id")
}

// MoviesInChronology returns every movie in in-universe order.
func (c *Catalog) MoviesInChronology(ctx context.Context) ([]types.Movie, error) {
	return c.movieList(ctx, "chronology")
}

func (c *Catalog) movieList(ctx context.Context, order string) ([]types.Movie, error) {
	rows, err := c.movies.All(ctx, dbtable.Select{OrderBy: []string{order}})
	if err != nil {
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	out := make([]types.Movie, len(rows))
	for i, r := range rows {
		if out[i], err = c.movie(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Movie returns the movie with id, or types.ErrNotFound.
func (c *Catalog) Movie(ctx context.Context, id int64) (types.Movie, error) {
	r, err := c.movies.GetByID(ctx, id)
	if err != nil {
		return types.Movie{}, fmt.Errorf("movie %d: %w", id, err)
	}
	return c.movie(r)
}

// CharacterFilter narrows Characters. Zero fields match everything.
type CharacterFilter struct {
	CharacterType        string
	Allegiance           string
	Sex                  string
	HasForce             *bool
	FirstAppearedMovieID *int64
	DiedInMovieID        *int64
	Alive                *bool // Survives every film (died_in_movie_id is NULL).
}

func (c *Catalog) eq(f CharacterFilter) map[string]any {
	eq := make(map[string]any)
	if f.CharacterType != "" {
		eq["character_type"] = f.CharacterType
	}
	if f.Allegiance != "" {
		eq["allegiance"] = f.Allegiance
	}
	if f.Sex != "" {
		eq["sex"] = f.Sex
	}
	if f.HasForce != nil {
		eq["has_force"] = c.forceValue(*f.HasForce)
	}
	if f.FirstAppearedMovieID != nil {
		eq["first_appeared_movie_id"] = *f.FirstAppearedMovieID
	}
	if f.DiedInMovieID != nil {
		eq["died_in_movie_id"] = *f.DiedInMovieID
	}
	return eq
}

// forceValue encodes a has_force constraint the way the variant stores it.
func (c *Catalog) forceValue(b bool) any {
	if c.variant == types.VariantPostgres {
		return b
	}
	if b {
		return 1
	}
	return 0
}

// Characters returns the characters matching f in id order.
func (c *Catalog) Characters(ctx context.Context, f CharacterFilter) ([]types.Character, error) {
	rows, err := c.characters.Find(ctx, dbtable.Filter{Eq: c.eq(f)})
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	out := make([]types.Character, 0, len(rows))
	for _, r := range rows {
		ch, err := character(r)
		if err != nil {
			return nil, err
		}
		if f.Alive != nil && ch.Alive() != *f.Alive {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

// Character returns the character with id, or types.ErrNotFound.
func (c *Catalog) Character(ctx context.Context, id int64) (types.Character, error) {
	r, err := c.characters.GetByID(ctx, id)
	if err != nil {
		return types.Character{}, fmt.Errorf("character %d: %w", id, err)
	}
	return character(r)
}

// movie hydrates a row and rejects one that breaks the entity invariants.
func (c *Catalog) movie(r dbtable.Row) (types.Movie, error) {
	id, _ := r.Int64("id")
	chron, _ := r.Int64("chronology")
	m := types.Movie{
		ID:         id,
		Name:       r.String("name"),
		Episode:    optString(r, "episode"),
		Director:   r.String("director"),
		Chronology: int(chron),
	}
	if y, ok := r.Int64(c.variant.ReleaseYearColumn()); ok {
		year := int(y)
		m.ReleaseYear = &year
	}
	if err := m.Validate(); err != nil {
		return types.Movie{}, fmt.Errorf("movie %d: %w", id, err)
	}
	return m, nil
}

func character(r dbtable.Row) (types.Character, error) {
	id, _ := r.Int64("id")
	ch := types.Character{
		ID:                   id,
		Name:                 r.String("name"),
		Sex:                  optString(r, "sex"),
		CharacterType:        r.String("character_type"),
		Allegiance:           optString(r, "allegiance"),
		FirstAppearedMovieID: optInt64(r, "first_appeared_movie_id"),
		HasForce:             r.Bool("has_force"),
		DiedInMovieID:        optInt64(r, "died_in_movie_id"),
	}
	if err := ch.Validate(); err != nil {
		return types.Character{}, fmt.Errorf("character %d: %w", id, err)
	}
	return ch, nil
}

func optString(r dbtable.Row, col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

func optInt64(r dbtable.Row, col string) *int64 {
	n, ok := r.Int64(col)
	if !ok {
		return nil
	}
	return &n
}
