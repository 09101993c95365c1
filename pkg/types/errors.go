package types

import "errors"

// Fixture errors.
var (
	ErrTablesExist        = errors.New("fixture tables already exist")
	ErrFixtureInvalid     = errors.New("fixture content does not hold")
	ErrUnknownVariant     = errors.New("unknown fixture variant")
	ErrVariantUnsupported = errors.New("fixture variant not supported by driver")
)

// Table gateway errors.
var (
	ErrNotFound      = errors.New("row not found")
	ErrUnsafeSQL     = errors.New("identifier list contains unsafe characters")
	ErrEmptyRow      = errors.New("row has no columns to write")
	ErrMixedFilter   = errors.New("raw where clause cannot be combined with column constraints")
	ErrNotExactlyOne = errors.New("query did not return exactly one row")
	ErrMissingPK     = errors.New("row has no primary key value")
)

// Entity errors.
var (
	ErrInvalidName       = errors.New("name must not be empty")
	ErrDanglingReference = errors.New("character references a missing movie")
)
