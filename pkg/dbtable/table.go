// Package dbtable wraps one database table with a small gateway: typed
// statement builders, CRUD helpers, aggregates, paging and equality
// finders. Rows travel as Row maps keyed by column name.
package dbtable

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Querier is the subset of *sql.DB and *sql.Tx the gateway needs.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Statement is SQL text with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Table is a gateway to a single table.
type Table struct {
	db *sql.DB
	q  Querier

	Name         string
	PKField      string // Primary key column, "id" by default.
	PKAutonumber bool   // The database assigns the key; inserts omit it.
	Dialect      dialect.Dialect
}

// Option configures a Table.
type Option func(*Table)

// WithPK sets the primary key column and whether the database assigns it.
func WithPK(field string, autonumber bool) Option {
	return func(t *Table) {
		t.PKField = field
		t.PKAutonumber = autonumber
	}
}

// New returns a gateway for table name on db. Returns ErrUnsafeSQL when the
// table or key name could carry SQL.
func New(db *sql.DB, d dialect.Dialect, name string, opts ...Option) (*Table, error) {
	t := &Table{
		db:           db,
		q:            db,
		Name:         name,
		PKField:      "id",
		PKAutonumber: true,
		Dialect:      d,
	}
	for _, opt := range opts {
		opt(t)
	}
	if name == "" || !dialect.SafeIdentifier(name) || !dialect.SafeIdentifier(t.PKField) {
		return nil, fmt.Errorf("%w: table %q key %q", types.ErrUnsafeSQL, name, t.PKField)
	}
	return t, nil
}

// WithTx returns a copy of t whose statements run inside tx.
func (t *Table) WithTx(tx *sql.Tx) *Table {
	c := *t
	c.q = tx
	return &c
}

// Query runs query and returns every row.
func (t *Table) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.Name, err)
	}
	out, _, err := scanRows(rows)
	return out, err
}

// Columns returns the table's column names in declaration order.
func (t *Table) Columns(ctx context.Context) ([]string, error) {
	rows, err := t.q.QueryContext(ctx, "SELECT * FROM "+t.Name+" WHERE 1 = 0")
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", t.Name, err)
	}
	_, cols, err := scanRows(rows)
	return cols, err
}

// Scalar returns the first column of the first row, or nil when the query
// returns no rows.
func (t *Table) Scalar(ctx context.Context, query string, args ...any) (any, error) {
	rows, err := t.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.Name, err)
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() || len(cols) == 0 {
		return nil, rows.Err()
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return normalize(vals[0]), nil
}

// Exec runs a statement that returns no rows.
func (t *Table) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing on %s: %w", t.Name, err)
	}
	return res, nil
}

// ExactlyOne runs query and returns its only row. Zero or several rows
// return ErrNotExactlyOne.
func (t *Table) ExactlyOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := t.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("%w: got %d", types.ErrNotExactlyOne, len(rows))
	}
	return rows[0], nil
}

// GetByID returns the row whose primary key equals id.
func (t *Table) GetByID(ctx context.Context, id any) (Row, error) {
	return t.Single(ctx, Filter{Eq: map[string]any{t.PKField: id}})
}

// HasPK reports whether row carries a non-nil primary key value.
func (t *Table) HasPK(row Row) bool {
	v, ok := row[t.PKField]
	return ok && v != nil
}

// PK returns the primary key value of row.
func (t *Table) PK(row Row) (any, bool) {
	v, ok := row[t.PKField]
	return v, ok && v != nil
}

func (t *Table) param(name string, index int) (string, error) {
	return t.Dialect.Param(name, index)
}
