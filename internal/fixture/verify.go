package fixture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Check is the outcome of one fixture property.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the checks of one Verify run.
type Report struct {
	Variant types.Variant `json:"variant"`
	Checks  []Check       `json:"checks"`
}

// Failed returns the checks that did not pass.
func (r Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// OK reports whether every check passed.
func (r Report) OK() bool { return len(r.Failed()) == 0 }

func (r *Report) add(name string, passed bool, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Detail: fmt.Sprintf(format, args...)})
}

// Pinned rows every consumer test suite may rely on.
const (
	FirstInChronology = "Star Wars: Episode I - The Phantom Menace"
	VaderDiedIn       = "Return of the Jedi"
)

// episodes lists the episode label of every movie by name. The two variants
// disagree on "Rogue One" and "The Last Jedi".
func episodes(v types.Variant) map[string]string {
	e := map[string]string{
		"Star Wars (A New Hope)":                       "IV",
		"The Empire Strikes Back":                      "V",
		"Return of the Jedi":                           "VI",
		"Star Wars: Episode I - The Phantom Menace":    "I",
		"Star Wars: Episode II - Attack of the Clones": "II",
		"Star Wars: Episode III - Revenge of the Sith": "III",
		"Star Wars: Episode VII - The Force Awakens":   "VII",
		"Rogue One: A Star Wars Story":                 "",
		"Star Wars: Episode VIII - The Last Jedi":      "VIII",
	}
	if v == types.VariantPostgres {
		e["Rogue One: A Star Wars Story"] = "VIII"
		e["Star Wars: Episode VIII - The Last Jedi"] = ""
	}
	return e
}

// Verify checks that db holds an unmodified copy of the fixture. Query
// errors abort immediately; failed checks are collected in the report and
// surface as ErrFixtureInvalid.
func Verify(ctx context.Context, db *sql.DB, v types.Variant) (Report, error) {
	r := Report{Variant: v}

	var movies, characters int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&movies); err != nil {
		return r, fmt.Errorf("counting movies: %w", err)
	}
	r.add("movie count", movies == MovieCount, "%d movies, want %d", movies, MovieCount)

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM characters").Scan(&characters); err != nil {
		return r, fmt.Errorf("counting characters: %w", err)
	}
	r.add("character count", characters == CharacterCount, "%d characters, want %d", characters, CharacterCount)

	chron, err := chronology(ctx, db)
	if err != nil {
		return r, err
	}
	r.add("chronology permutation", isPermutation(chron, MovieCount), "chronology values %v", chron)

	var blank int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM characters WHERE name IS NULL OR name = ''").Scan(&blank); err != nil {
		return r, fmt.Errorf("checking character names: %w", err)
	}
	r.add("character names present", blank == 0, "%d characters without a name", blank)

	for _, col := range []string{"first_appeared_movie_id", "died_in_movie_id"} {
		var dangling int
		query := fmt.Sprintf(`SELECT COUNT(*) FROM characters c
			WHERE c.%[1]s IS NOT NULL
			AND NOT EXISTS (SELECT 1 FROM movies m WHERE m.id = c.%[1]s)`, col)
		if err := db.QueryRowContext(ctx, query).Scan(&dangling); err != nil {
			return r, fmt.Errorf("checking %s references: %w", col, err)
		}
		r.add(col+" references", dangling == 0, "%d dangling references", dangling)
	}

	var first string
	err = db.QueryRowContext(ctx, "SELECT name FROM movies WHERE chronology = 1").Scan(&first)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("reading chronology 1: %w", err)
	}
	r.add("first in chronology", first == FirstInChronology, "chronology 1 is %q", first)

	var (
		vaderForce sql.NullBool
		vaderDied  sql.NullString
	)
	err = db.QueryRowContext(ctx, `SELECT c.has_force, m.name FROM characters c
		LEFT JOIN movies m ON m.id = c.died_in_movie_id
		WHERE c.name LIKE 'Darth Vader%'`).Scan(&vaderForce, &vaderDied)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("reading Darth Vader: %w", err)
	}
	r.add("darth vader", vaderForce.Valid && vaderForce.Bool && vaderDied.String == VaderDiedIn,
		"has_force=%v died_in=%q", vaderForce.Bool, vaderDied.String)

	var minYear, maxYear sql.NullInt64
	yearCol := v.ReleaseYearColumn()
	if err := db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT MIN(%[1]s), MAX(%[1]s) FROM movies", yearCol)).Scan(&minYear, &maxYear); err != nil {
		return r, fmt.Errorf("reading %s range: %w", yearCol, err)
	}
	r.add("release years", minYear.Int64 == 1977 && maxYear.Int64 == 2017,
		"%s spans %d..%d", yearCol, minYear.Int64, maxYear.Int64)

	mismatched, err := episodeMismatches(ctx, db, v)
	if err != nil {
		return r, err
	}
	r.add("episode labels", len(mismatched) == 0, "%s", strings.Join(mismatched, "; "))

	if !r.OK() {
		return r, fmt.Errorf("%w: %d of %d checks failed", types.ErrFixtureInvalid, len(r.Failed()), len(r.Checks))
	}
	return r, nil
}

func chronology(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT chronology FROM movies ORDER BY chronology")
	if err != nil {
		return nil, fmt.Errorf("reading chronology: %w", err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n sql.NullInt64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, int(n.Int64))
	}
	return out, rows.Err()
}

// isPermutation reports whether sorted is exactly 1..n.
func isPermutation(sorted []int, n int) bool {
	if len(sorted) != n {
		return false
	}
	for i, v := range sorted {
		if v != i+1 {
			return false
		}
	}
	return true
}

func episodeMismatches(ctx context.Context, db *sql.DB, v types.Variant) ([]string, error) {
	want := episodes(v)
	rows, err := db.QueryContext(ctx, "SELECT name, episode FROM movies ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("reading episodes: %w", err)
	}
	defer rows.Close()
	var bad []string
	for rows.Next() {
		var name, episode sql.NullString
		if err := rows.Scan(&name, &episode); err != nil {
			return nil, err
		}
		expected, known := want[name.String]
		if !known {
			bad = append(bad, fmt.Sprintf("unexpected movie %q", name.String))
			continue
		}
		if episode.String != expected {
			bad = append(bad, fmt.Sprintf("%s: episode %q, want %q", name.String, episode.String, expected))
		}
	}
	return bad, rows.Err()
}
