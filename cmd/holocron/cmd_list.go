package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/holocron/pkg/dbtable"
)

func newListCmd(a *app) *cobra.Command {
	var (
		order    string
		desc     bool
		limit    int
		count    bool
		page     int
		pageSize int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list <table> [column=value ...]",
		Short: "List rows of a fixture table",
		Long: `List prints the rows of movies or characters that match every
column=value constraint. The value "null" matches NULL. --count prints
only the number of matching rows; --page prints one page of them.`,
		Example: "  holocron list characters character_type=Droid\n  holocron list movies --order chronology --limit 3\n  holocron list characters has_force=1 --count\n  holocron list characters --page 2 --page-size 10",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tableArg(args[0])
			if err != nil {
				return err
			}
			eq, err := parseConstraints(args[1:])
			if err != nil {
				return err
			}
			if page < 0 || pageSize < 0 {
				return fmt.Errorf("%w: --page and --page-size must not be negative", errUsage)
			}
			if page > 0 && limit > 0 {
				return fmt.Errorf("%w: --page and --limit cannot be combined", errUsage)
			}

			b, err := a.attach(cmd.Context(), false, false, nil)
			if err != nil {
				return err
			}
			defer b.Detach()
			t, err := b.Table(table)
			if err != nil {
				return err
			}

			f := dbtable.Filter{Eq: eq, Select: dbtable.Select{Limit: limit}}
			if order != "" {
				f.Select.OrderBy = []string{order}
			}

			if count {
				n, err := t.CountMatching(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("count %s: %w", table, err)
				}
				fmt.Fprintln(a.stdout, n)
				return nil
			}

			if page > 0 {
				p, err := t.FindPaged(cmd.Context(), f, desc, pageSize, page)
				if err != nil {
					return fmt.Errorf("list %s: %w", table, err)
				}
				if asJSON {
					return writeIndentedJSON(a, p)
				}
				cols, err := t.Columns(cmd.Context())
				if err != nil {
					return err
				}
				printRows(a, cols, p.Records)
				fmt.Fprintf(a.stdout, "page %d of %d (%d rows total)\n", p.CurrentPage, p.TotalPages, p.TotalRecords)
				return nil
			}

			find := t.Find
			if desc {
				find = t.FindDesc
			}
			rows, err := find(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("list %s: %w", table, err)
			}

			if asJSON {
				return writeIndentedJSON(a, rows)
			}
			cols, err := t.Columns(cmd.Context())
			if err != nil {
				return err
			}
			printRows(a, cols, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", "", "order by column (default: id)")
	cmd.Flags().BoolVar(&desc, "desc", false, "reverse the order")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rows")
	cmd.Flags().BoolVar(&count, "count", false, "print only the number of matching rows")
	cmd.Flags().IntVar(&page, "page", 0, "print this page (1-based) of the matching rows")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "rows per page with --page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	return cmd
}

// parseConstraints turns column=value arguments into equality constraints.
func parseConstraints(args []string) (map[string]any, error) {
	eq := make(map[string]any, len(args))
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, fmt.Errorf("%w: constraint %q is not column=value", errUsage, arg)
		}
		eq[col] = constraintValue(val)
	}
	return eq, nil
}

// constraintValue types a command line value so it compares equal on
// engines without implicit casts: integers and booleans are passed as such.
func constraintValue(s string) any {
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func writeIndentedJSON(a *app, v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRows(a *app, cols []string, rows []dbtable.Row) {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(cols, "\t")))
	for _, r := range rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			if r[c] == nil {
				vals[i] = "-"
				continue
			}
			vals[i] = r.String(c)
		}
		fmt.Fprintln(w, strings.Join(vals, "\t"))
	}
	w.Flush()
	fmt.Fprintf(a.stdout, "(%d rows)\n", len(rows))
}
