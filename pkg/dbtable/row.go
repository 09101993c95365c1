package dbtable

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
)

// Row is one record keyed by column name.
type Row map[string]any

// Columns returns the row's column names in sorted order.
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Int64 returns column as an int64. ok is false for NULL or non-numeric
// values.
func (r Row) Int64(column string) (int64, bool) {
	return toInt64(r[column])
}

// String returns column as a string; NULL becomes "".
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns column as a bool, accepting native booleans and 0/1 integers.
func (r Row) Bool(column string) bool {
	if b, ok := r[column].(bool); ok {
		return b
	}
	n, ok := toInt64(r[column])
	return ok && n != 0
}

// scanRows reads every row and the select-ordered column list. No rows is
// an empty slice, never nil.
func scanRows(rows *sql.Rows) ([]Row, []string, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	out := make([]Row, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = normalize(vals[i])
		}
		out = append(out, row)
	}
	return out, cols, rows.Err()
}

// normalize converts driver specific representations into plain Go values.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case int:
		return int64(x)
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		return int64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		return n, err == nil
	}
	return 0, false
}
