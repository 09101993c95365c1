package fixture

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/holocron/pkg/types"
)

// Snapshot holds every row of both fixture tables in id order, with driver
// values normalized so two snapshots of equal content compare equal.
type Snapshot map[string][][]any

// TakeSnapshot reads both fixture tables.
func TakeSnapshot(ctx context.Context, db *sql.DB) (Snapshot, error) {
	snap := make(Snapshot, len(types.StandardTableNames))
	for _, table := range types.StandardTableNames {
		rows, err := dumpTable(ctx, db, table)
		if err != nil {
			return nil, err
		}
		snap[table] = rows
	}
	return snap, nil
}

func dumpTable(ctx context.Context, db *sql.DB, table string) ([][]any, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("dumping %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// normalize converts driver specific representations into comparable values.
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
