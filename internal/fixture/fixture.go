// Package fixture embeds the Star Wars sample dataset and loads it into a
// database.
//
// Two scripts ship with the package. The generic script runs on SQLite (and
// most engines) and has no drop guard; the Postgres script drops and
// recreates both tables. Either way the load happens in one transaction:
// the database ends up with all 9 movies and 42 characters or with nothing
// new at all.
package fixture

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

//go:embed starwars_sqlite.sql
var genericSQL string

//go:embed starwars_postgres.sql
var postgresSQL string

// Expected row counts of a freshly loaded fixture.
const (
	MovieCount     = 9
	CharacterCount = 42
)

// Script returns the embedded SQL text for variant.
func Script(v types.Variant) (string, error) {
	switch v {
	case types.VariantGeneric:
		return genericSQL, nil
	case types.VariantPostgres:
		return postgresSQL, nil
	}
	return "", fmt.Errorf("%w: %q", types.ErrUnknownVariant, v)
}

// Statements returns the variant's script split into executable statements,
// in script order.
func Statements(v types.Variant) ([]string, error) {
	script, err := Script(v)
	if err != nil {
		return nil, err
	}
	return SplitStatements(script), nil
}

// Schema returns the DDL statements of the variant (DROP and CREATE).
func Schema(v types.Variant) ([]string, error) {
	return filterStatements(v, func(kw string) bool {
		return kw == "CREATE" || kw == "DROP"
	})
}

// Seed returns the INSERT statements of the variant. Movies are seeded
// before characters.
func Seed(v types.Variant) ([]string, error) {
	return filterStatements(v, func(kw string) bool {
		return kw == "INSERT"
	})
}

func filterStatements(v types.Variant, keep func(keyword string) bool) ([]string, error) {
	stmts, err := Statements(v)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, s := range stmts {
		if keep(leadingKeyword(s)) {
			out = append(out, s)
		}
	}
	return out, nil
}

// leadingKeyword returns the first word of stmt in upper case.
func leadingKeyword(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// summarize shortens a statement for error messages and logs.
func summarize(stmt string) string {
	line := stmt
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > 60 {
		line = line[:57] + "..."
	}
	return line
}
