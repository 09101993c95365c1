package dbtable

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/dialect"
	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Select holds the clauses of a SELECT against the table. Where and Having
// are raw SQL fragments whose parameters go in Args; Columns, GroupBy and
// OrderBy are identifier lists and are checked for unsafe characters.
type Select struct {
	Columns  []string // Defaults to *.
	Distinct bool
	Where    string
	GroupBy  []string
	Having   string
	OrderBy  []string
	Limit    int // Zero means no limit.
	Args     []any
}

// Page is one page of a paged select.
type Page struct {
	TotalRecords int64 `json:"total_records"`
	TotalPages   int64 `json:"total_pages"`
	PageSize     int   `json:"page_size"`
	CurrentPage  int   `json:"current_page"`
	Records      []Row `json:"records"`
}

// CreateSelectSQL renders sel with the table's dialect.
func (t *Table) CreateSelectSQL(sel Select) (string, error) {
	vars, err := t.selectVars(sel)
	if err != nil {
		return "", err
	}
	return dialect.Format(t.Dialect.SelectSQL, vars), nil
}

func (t *Table) selectVars(sel Select) (map[string]string, error) {
	columns, err := checkList(sel.Columns)
	if err != nil {
		return nil, err
	}
	if columns == "" {
		columns = "*"
	}
	groupBy, err := checkList(sel.GroupBy)
	if err != nil {
		return nil, err
	}
	orderBy, err := checkList(sel.OrderBy)
	if err != nil {
		return nil, err
	}

	kw := t.Dialect.Keywords
	distinct := ""
	if sel.Distinct {
		distinct = " " + kw.Distinct
	}
	limit := ""
	if sel.Limit > 0 {
		limit = strconv.Itoa(sel.Limit)
	}
	return map[string]string{
		"distinct": distinct,
		"columns":  columns,
		"table":    t.Name,
		"where":    sqlPart(kw.Where, sel.Where),
		"groupby":  sqlPart(kw.GroupBy, groupBy),
		"having":   sqlPart(kw.Having, sel.Having),
		"orderby":  sqlPart(kw.OrderBy, orderBy),
		"limit":    sqlPart(kw.Limit, limit),
	}, nil
}

// checkList joins an identifier list, rejecting entries that could end the
// statement or open a string literal.
func checkList(items []string) (string, error) {
	joined := strings.Join(items, ", ")
	if !dialect.SafeIdentifier(joined) {
		return "", fmt.Errorf("%w: %q", types.ErrUnsafeSQL, joined)
	}
	return joined, nil
}

func sqlPart(keyword, clause string) string {
	if clause == "" {
		return ""
	}
	return " " + keyword + " " + clause
}

// All returns every row matching sel.
func (t *Table) All(ctx context.Context, sel Select) ([]Row, error) {
	query, err := t.CreateSelectSQL(sel)
	if err != nil {
		return nil, err
	}
	return t.Query(ctx, query, sel.Args...)
}

// One returns the first row matching sel, or ErrNotFound.
func (t *Table) One(ctx context.Context, sel Select) (Row, error) {
	rows, err := t.All(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, types.ErrNotFound
	}
	return rows[0], nil
}

// Count returns the number of rows matching where. An empty column counts
// rows; distinct counts distinct values of column.
func (t *Table) Count(ctx context.Context, column string, distinct bool, where string, args ...any) (int64, error) {
	if column == "" {
		column = "*"
	}
	if distinct {
		column = t.Dialect.Keywords.Distinct + " " + column
	}
	v, err := t.aggregate(ctx, t.Dialect.Keywords.Count, column, where, args)
	if err != nil {
		return 0, err
	}
	n, _ := toInt64(v)
	return n, nil
}

// Min returns the smallest value of column among rows matching where.
func (t *Table) Min(ctx context.Context, column, where string, args ...any) (any, error) {
	return t.aggregate(ctx, t.Dialect.Keywords.Min, column, where, args)
}

// Max returns the largest value of column among rows matching where.
func (t *Table) Max(ctx context.Context, column, where string, args ...any) (any, error) {
	return t.aggregate(ctx, t.Dialect.Keywords.Max, column, where, args)
}

// Avg returns the average of column among rows matching where.
func (t *Table) Avg(ctx context.Context, column, where string, args ...any) (any, error) {
	return t.aggregate(ctx, t.Dialect.Keywords.Avg, column, where, args)
}

func (t *Table) aggregate(ctx context.Context, fn, column, where string, args []any) (any, error) {
	query, err := t.CreateSelectSQL(Select{
		Columns: []string{fmt.Sprintf("%s(%s) aggfield1", fn, column)},
		Where:   where,
	})
	if err != nil {
		return nil, err
	}
	return t.Scalar(ctx, query, args...)
}

// Paged returns page currentPage (1-based) of pageSize rows matching sel,
// with the total row and page counts. sel.Limit is ignored.
func (t *Table) Paged(ctx context.Context, sel Select, pageSize, currentPage int) (Page, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if currentPage <= 0 {
		currentPage = 1
	}

	countSel := sel
	countSel.Columns = []string{"1 one"}
	countSel.OrderBy = nil
	countSel.Limit = 0
	subquery, err := t.CreateSelectSQL(countSel)
	if err != nil {
		return Page{}, err
	}
	countSQL := dialect.Format(t.Dialect.PagingCountSQL, map[string]string{"subquery": subquery})
	total, err := t.Scalar(ctx, countSQL, sel.Args...)
	if err != nil {
		return Page{}, err
	}
	totalRecords, _ := toInt64(total)

	pageSel := sel
	pageSel.Limit = 0
	vars, err := t.selectVars(pageSel)
	if err != nil {
		return Page{}, err
	}
	vars["page_size"] = strconv.Itoa(pageSize)
	vars["page_start"] = strconv.Itoa((currentPage - 1) * pageSize)
	records, err := t.Query(ctx, dialect.Format(t.Dialect.PagingSQL, vars), sel.Args...)
	if err != nil {
		return Page{}, err
	}

	return Page{
		TotalRecords: totalRecords,
		TotalPages:   (totalRecords + int64(pageSize) - 1) / int64(pageSize),
		PageSize:     pageSize,
		CurrentPage:  currentPage,
		Records:      records,
	}, nil
}
