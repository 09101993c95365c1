package dbtable

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Filter selects rows by column equality. Eq maps column names to values;
// a nil value matches NULL. Select supplies the other clauses. Setting both
// Eq and Select.Where is an error.
type Filter struct {
	Eq     map[string]any
	Select Select
}

// build turns the filter into a Select. desc reverses the default key
// order and limit caps the row count.
func (t *Table) build(f Filter, desc bool, limit int) (Select, error) {
	sel := f.Select
	if sel.Where != "" && len(f.Eq) > 0 {
		return Select{}, types.ErrMixedFilter
	}
	args := append([]any(nil), sel.Args...)

	if len(f.Eq) > 0 {
		cols := make([]string, 0, len(f.Eq))
		for c := range f.Eq {
			cols = append(cols, c)
		}
		sort.Strings(cols)

		var constraints []string
		for _, c := range cols {
			v := f.Eq[c]
			if v == nil {
				if _, err := checkList([]string{c}); err != nil {
					return Select{}, err
				}
				constraints = append(constraints, c+" IS NULL")
				continue
			}
			p, err := t.param(c, len(args))
			if err != nil {
				return Select{}, err
			}
			constraints = append(constraints, c+" = "+p)
			args = append(args, v)
		}
		sel.Where = strings.Join(constraints, " AND ")
	}
	sel.Args = args

	if len(sel.OrderBy) == 0 {
		sel.OrderBy = []string{t.PKField}
	}
	if desc {
		order := append([]string(nil), sel.OrderBy...)
		order[0] += " DESC"
		sel.OrderBy = order
	}
	if limit > 0 {
		sel.Limit = limit
	}
	return sel, nil
}

// CountMatching returns the number of rows matching f.
func (t *Table) CountMatching(ctx context.Context, f Filter) (int64, error) {
	sel, err := t.build(f, false, 0)
	if err != nil {
		return 0, err
	}
	return t.Count(ctx, "", false, sel.Where, sel.Args...)
}

// FindPaged returns page currentPage of the rows matching f. desc reverses
// the leading order column as FindDesc does.
func (t *Table) FindPaged(ctx context.Context, f Filter, desc bool, pageSize, currentPage int) (Page, error) {
	sel, err := t.build(f, desc, 0)
	if err != nil {
		return Page{}, err
	}
	return t.Paged(ctx, sel, pageSize, currentPage)
}

// Find returns every row matching f, ordered by the key unless f orders
// otherwise.
func (t *Table) Find(ctx context.Context, f Filter) ([]Row, error) {
	sel, err := t.build(f, false, 0)
	if err != nil {
		return nil, err
	}
	return t.All(ctx, sel)
}

// FindDesc is Find with the leading order column reversed.
func (t *Table) FindDesc(ctx context.Context, f Filter) ([]Row, error) {
	sel, err := t.build(f, true, 0)
	if err != nil {
		return nil, err
	}
	return t.All(ctx, sel)
}

// First returns the first row matching f, or ErrNotFound.
func (t *Table) First(ctx context.Context, f Filter) (Row, error) {
	sel, err := t.build(f, false, 1)
	if err != nil {
		return nil, err
	}
	return t.One(ctx, sel)
}

// Last returns the last row matching f by the leading order column, or
// ErrNotFound.
func (t *Table) Last(ctx context.Context, f Filter) (Row, error) {
	sel, err := t.build(f, true, 1)
	if err != nil {
		return nil, err
	}
	return t.One(ctx, sel)
}

// Single returns the only row matching f. No match is ErrNotFound; more
// than one is ErrNotExactlyOne.
func (t *Table) Single(ctx context.Context, f Filter) (Row, error) {
	sel, err := t.build(f, false, 2)
	if err != nil {
		return nil, err
	}
	rows, err := t.All(ctx, sel)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, types.ErrNotFound
	case 1:
		return rows[0], nil
	}
	return nil, fmt.Errorf("%w: filter matched several rows", types.ErrNotExactlyOne)
}
