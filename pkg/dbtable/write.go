package dbtable

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// CreateDeleteSQL renders a DELETE for the table, optionally restricted by
// a raw where clause.
func (t *Table) CreateDeleteSQL(where string) string {
	query := dialect.Format(t.Dialect.DeleteSQL, map[string]string{"table": t.Name})
	return query + sqlPart(t.Dialect.Keywords.Where, where)
}

// Delete removes the rows matching where and returns how many went.
func (t *Table) Delete(ctx context.Context, where string, args ...any) (int64, error) {
	res, err := t.Exec(ctx, t.CreateDeleteSQL(where), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByID removes the row whose primary key equals id.
func (t *Table) DeleteByID(ctx context.Context, id any) (int64, error) {
	p, err := t.param(t.PKField, 0)
	if err != nil {
		return 0, err
	}
	return t.Delete(ctx, t.PKField+" = "+p, id)
}

// CreateInsertStatement renders an INSERT for row. The key column is left
// out when the database assigns it.
func (t *Table) CreateInsertStatement(row Row) (Statement, error) {
	var cols, params []string
	var args []any
	for _, c := range row.Columns() {
		if t.PKAutonumber && strings.EqualFold(c, t.PKField) {
			continue
		}
		p, err := t.param(c, len(cols))
		if err != nil {
			return Statement{}, err
		}
		cols = append(cols, c)
		params = append(params, p)
		args = append(args, row[c])
	}
	if len(cols) == 0 {
		return Statement{}, types.ErrEmptyRow
	}
	query := dialect.Format(t.Dialect.InsertSQL, map[string]string{
		"table":    t.Name,
		"columns":  strings.Join(cols, ", "),
		"values":   strings.Join(params, ", "),
		"pk_field": t.PKField,
	})
	return Statement{SQL: query, Args: args}, nil
}

// Insert adds row and returns the new primary key.
func (t *Table) Insert(ctx context.Context, row Row) (int64, error) {
	stmt, err := t.CreateInsertStatement(row)
	if err != nil {
		return 0, err
	}
	return t.insert(ctx, t.q, stmt)
}

func (t *Table) insert(ctx context.Context, q Querier, stmt Statement) (int64, error) {
	if t.Dialect.InsertReturnsID {
		var id int64
		if err := q.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("inserting into %s: %w", t.Name, err)
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("inserting into %s: %w", t.Name, err)
	}
	return res.LastInsertId()
}

// CreateUpdateStatement renders an UPDATE setting every non-key column of
// row. A nil id means the key is taken from the row itself.
func (t *Table) CreateUpdateStatement(row Row, id any) (Statement, error) {
	if id == nil {
		v, ok := t.PK(row)
		if !ok {
			return Statement{}, types.ErrMissingPK
		}
		id = v
	}
	var sets []string
	var args []any
	for _, c := range row.Columns() {
		if strings.EqualFold(c, t.PKField) {
			continue
		}
		p, err := t.param(c, len(sets))
		if err != nil {
			return Statement{}, err
		}
		sets = append(sets, c+" = "+p)
		args = append(args, row[c])
	}
	if len(sets) == 0 {
		return Statement{}, types.ErrEmptyRow
	}
	pk, err := t.param(t.PKField, len(sets))
	if err != nil {
		return Statement{}, err
	}
	query := dialect.Format(t.Dialect.UpdateSQL, map[string]string{
		"table":       t.Name,
		"set_columns": strings.Join(sets, ", "),
	})
	query += sqlPart(t.Dialect.Keywords.Where, t.PKField+" = "+pk)
	return Statement{SQL: query, Args: append(args, id)}, nil
}

// Update writes row over the record with key id (or the row's own key when
// id is nil) and returns the number of rows changed.
func (t *Table) Update(ctx context.Context, row Row, id any) (int64, error) {
	stmt, err := t.CreateUpdateStatement(row, id)
	if err != nil {
		return 0, err
	}
	res, err := t.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateUpsertStatement renders an UPDATE when row has a key and an INSERT
// otherwise.
func (t *Table) CreateUpsertStatement(row Row) (Statement, error) {
	if t.HasPK(row) {
		return t.CreateUpdateStatement(row, nil)
	}
	return t.CreateInsertStatement(row)
}

// Save upserts every row in one transaction. Either all rows are written
// or none are.
func (t *Table) Save(ctx context.Context, rows ...Row) error {
	stmts := make([]Statement, 0, len(rows))
	for _, row := range rows {
		stmt, err := t.CreateUpsertStatement(row)
		if err != nil {
			return err
		}
		stmts = append(stmts, stmt)
	}

	if tx, ok := t.q.(*sql.Tx); ok {
		return t.saveIn(ctx, tx, stmts)
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := t.saveIn(ctx, tx, stmts); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *Table) saveIn(ctx context.Context, tx *sql.Tx, stmts []Statement) error {
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...); err != nil {
			return fmt.Errorf("saving into %s: %w", t.Name, err)
		}
	}
	return nil
}
