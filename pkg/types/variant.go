package types

import (
	"fmt"
	"strings"
)

// Variant names one of the two fixture scripts.
type Variant string

// Fixture variants.
const (
	// VariantGeneric is the SQLite flavored script: integer keys, has_force
	// stored as 0/1 and the year column spelled released_year. It has no
	// drop guard.
	VariantGeneric Variant = "generic"

	// VariantPostgres drops and recreates both tables, uses SERIAL keys and
	// BOOLEAN, and spells the year column release_year.
	VariantPostgres Variant = "postgres"
)

// Variants lists every known variant.
var Variants = []Variant{VariantGeneric, VariantPostgres}

// ParseVariant maps a user supplied name to a Variant. "sqlite" is accepted
// as an alias for the generic variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic", "sqlite", "a":
		return VariantGeneric, nil
	case "postgres", "postgresql", "b":
		return VariantPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// String implements fmt.Stringer.
func (v Variant) String() string { return string(v) }

// ReleaseYearColumn returns the column name holding a movie's release year.
func (v Variant) ReleaseYearColumn() string {
	if v == VariantPostgres {
		return "release_year"
	}
	return "released_year"
}

// HasDropGuard reports whether the variant's script drops existing tables
// before creating them.
func (v Variant) HasDropGuard() bool {
	return v == VariantPostgres
}

// SupportsDriver reports whether the variant's script can run on the given
// database/sql driver. The generic script is portable; the Postgres script
// relies on SERIAL and needs a Postgres driver.
func (v Variant) SupportsDriver(driver string) bool {
	switch v {
	case VariantGeneric:
		return true
	case VariantPostgres:
		return driver == DriverPgx || driver == DriverPostgres
	}
	return false
}

// DefaultVariant returns the variant a driver loads when none is configured.
func DefaultVariant(driver string) Variant {
	if driver == DriverPgx || driver == DriverPostgres {
		return VariantPostgres
	}
	return VariantGeneric
}
