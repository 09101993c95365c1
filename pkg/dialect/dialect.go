// Package dialect describes how to spell the statements the table gateway
// builds for each SQL engine.
//
// Statement templates use {name} tokens. Format fills the tokens it is given
// and leaves the rest in place, so a template can be filled in two passes
// (first the select clauses, then the paging bounds).
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// PlaceholderStyle is the bind parameter syntax a driver expects.
type PlaceholderStyle int

// Placeholder styles.
const (
	Question PlaceholderStyle = iota // ?
	Dollar                           // $1, $2, ...
	AtP                              // @p1, @p2, ...
)

// Keywords are the SQL words the select builder emits.
type Keywords struct {
	Select   string
	Distinct string
	From     string
	Where    string
	GroupBy  string
	Having   string
	OrderBy  string
	Limit    string
	Count    string
	Min      string
	Max      string
	Avg      string
}

// Dialect is the set of statement templates for one engine.
type Dialect struct {
	Name      string
	InsertSQL string
	SelectSQL string
	UpdateSQL string
	DeleteSQL string

	// PagingCountSQL wraps a subquery to count its rows; PagingSQL selects
	// one page using {page_start} and {page_size}.
	PagingCountSQL string
	PagingSQL      string

	// InsertReturnsID is set when InsertSQL yields the new key as a result
	// row. Otherwise the driver's LastInsertId is used.
	InsertReturnsID bool

	Keywords    Keywords
	Placeholder PlaceholderStyle
}

// SQL92 is the base dialect the others derive from.
var SQL92 = Dialect{
	Name:           "sql",
	InsertSQL:      "INSERT INTO {table} ({columns}) VALUES ({values})",
	SelectSQL:      "SELECT{distinct} {columns} FROM {table}{where}{groupby}{having}{orderby}{limit}",
	UpdateSQL:      "UPDATE {table} SET {set_columns}",
	DeleteSQL:      "DELETE FROM {table}",
	PagingCountSQL: "SELECT COUNT(*) FROM ({subquery}) x",
	PagingSQL:      "SELECT {columns} FROM {table}{where}{groupby}{having}{orderby} LIMIT {page_size} OFFSET {page_start}",
	Keywords: Keywords{
		Select:   "SELECT",
		Distinct: "DISTINCT",
		From:     "FROM",
		Where:    "WHERE",
		GroupBy:  "GROUP BY",
		Having:   "HAVING",
		OrderBy:  "ORDER BY",
		Limit:    "LIMIT",
		Count:    "COUNT",
		Min:      "MIN",
		Max:      "MAX",
		Avg:      "AVG",
	},
	Placeholder: Question,
}

// SQLite pages with LIMIT start, size.
var SQLite = derive(SQL92, func(d *Dialect) {
	d.Name = "sqlite"
	d.PagingSQL = "SELECT {columns} FROM {table}{where}{groupby}{having}{orderby} LIMIT {page_start}, {page_size}"
})

// Postgres returns the new key from INSERT and binds with $n.
var Postgres = derive(SQL92, func(d *Dialect) {
	d.Name = "postgres"
	d.InsertSQL = "INSERT INTO {table} ({columns}) VALUES ({values}) RETURNING {pk_field} AS newid"
	d.InsertReturnsID = true
	d.Placeholder = Dollar
})

// MySQL pages with LIMIT start, size like SQLite.
var MySQL = derive(SQL92, func(d *Dialect) {
	d.Name = "mysql"
	d.PagingSQL = "SELECT {columns} FROM {table}{where}{groupby}{having}{orderby} LIMIT {page_start}, {page_size}"
})

// MSSQL limits with TOP and pages with OFFSET ... FETCH.
var MSSQL = derive(SQL92, func(d *Dialect) {
	d.Name = "mssql"
	d.SelectSQL = "SELECT{distinct}{limit} {columns} FROM {table}{where}{groupby}{having}{orderby}"
	d.InsertSQL = "INSERT INTO {table} ({columns}) OUTPUT INSERTED.[{pk_field}] VALUES ({values})"
	d.InsertReturnsID = true
	d.PagingCountSQL = "SELECT COUNT(*) c FROM ({subquery}) x"
	d.PagingSQL = "SELECT {columns} FROM {table}{where}{groupby}{having}{orderby} OFFSET {page_start} ROWS FETCH NEXT {page_size} ROWS ONLY"
	d.Keywords.Limit = "TOP"
	d.Placeholder = AtP
})

func derive(base Dialect, edit func(*Dialect)) Dialect {
	d := base
	edit(&d)
	return d
}

// ForDriver maps a database/sql driver name to its dialect.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlserver", "mssql":
		return MSSQL, nil
	}
	return Dialect{}, fmt.Errorf("%w: %q", types.ErrUnknownDriver, driver)
}

// Lower returns a copy of d that emits lower-case SQL.
func Lower(d Dialect) Dialect {
	lower := strings.ToLower
	d.InsertSQL = lower(d.InsertSQL)
	d.SelectSQL = lower(d.SelectSQL)
	d.UpdateSQL = lower(d.UpdateSQL)
	d.DeleteSQL = lower(d.DeleteSQL)
	d.PagingCountSQL = lower(d.PagingCountSQL)
	d.PagingSQL = lower(d.PagingSQL)
	k := &d.Keywords
	for _, s := range []*string{
		&k.Select, &k.Distinct, &k.From, &k.Where, &k.GroupBy, &k.Having,
		&k.OrderBy, &k.Limit, &k.Count, &k.Min, &k.Max, &k.Avg,
	} {
		*s = lower(*s)
	}
	return d
}

// Param returns the bind parameter for the zero-based position index.
// name is the column the parameter binds to; it is rejected when it could
// smuggle SQL into the statement.
func (d Dialect) Param(name string, index int) (string, error) {
	if !SafeIdentifier(name) {
		return "", fmt.Errorf("%w: %q", types.ErrUnsafeSQL, name)
	}
	switch d.Placeholder {
	case Dollar:
		return "$" + strconv.Itoa(index+1), nil
	case AtP:
		return "@p" + strconv.Itoa(index+1), nil
	}
	return "?", nil
}

// SafeIdentifier reports whether s is free of statement terminators and
// string quotes.
func SafeIdentifier(s string) bool {
	return !strings.ContainsAny(s, ";'")
}

// Format replaces {key} tokens in tmpl with vars[key]. Tokens without a
// value are left untouched.
func Format(tmpl string, vars map[string]string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end += open
		key := tmpl[open+1 : end]
		b.WriteString(tmpl[:open])
		if v, ok := vars[key]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(tmpl[open : end+1])
		}
		tmpl = tmpl[end+1:]
	}
}
