package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/antostif07/pyiurs-drive/drive"
	"github.com/antostif07/pyiurs-drive/types"
)

var (
	listSearch  string
	listFilters []string
	listSort    string
	listDesc    bool
)

var listCmd = &cobra.Command{
	Use:   "list <doc>",
	Short: "Render a document's rows through search, filters and sort",
	Long: "list prints the document as a table. --search matches a case-insensitive " +
		"substring anywhere in a row; --filter takes col=value for text matching or " +
		"col=min..max for number/date ranges (either bound may be omitted); --sort " +
		"orders by a column's native value order.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		doc, err := resolveDocument(store, args[0])
		if err != nil {
			return err
		}
		view, err := drive.LoadView(store, doc.ID)
		if err != nil {
			return err
		}

		q := types.NewQueryState()
		q.Search = listSearch
		for _, raw := range listFilters {
			columnID, filter, err := parseFilter(view.Columns, raw)
			if err != nil {
				return err
			}
			q.Filters[columnID] = filter
		}
		if listSort != "" {
			col, err := resolveColumn(store, doc.ID, listSort)
			if err != nil {
				return err
			}
			q.Sort = &types.SortState{ColumnID: col.ID, Descending: listDesc}
		}

		rows := view.Apply(q)
		printTable(view.Columns, view.PivotRows(rows))
		return nil
	},
}

// parseFilter turns a col=value or col=min..max argument into a typed
// filter for the named column. The column's kind decides the filter
// shape: number and date columns take ranges, everything else matches a
// case-insensitive substring.
func parseFilter(columns []types.Column, raw string) (string, types.Filter, error) {
	name, expr, ok := strings.Cut(raw, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid filter %q, want col=value or col=min..max", raw)
	}
	var col *types.Column
	for i := range columns {
		if columns[i].ID == name || columns[i].Label == name {
			col = &columns[i]
			break
		}
	}
	if col == nil {
		return "", nil, fmt.Errorf("filter column %q: %w", name, drive.ErrNotFound)
	}

	switch col.Kind {
	case types.KindNumber:
		lo, hi, ok := strings.Cut(expr, "..")
		if !ok {
			lo, hi = expr, expr
		}
		f := types.NumberRangeFilter{}
		if lo != "" {
			v, err := strconv.ParseFloat(lo, 64)
			if err != nil {
				return "", nil, fmt.Errorf("filter %q: bad number %q", raw, lo)
			}
			f.Min = &v
		}
		if hi != "" {
			v, err := strconv.ParseFloat(hi, 64)
			if err != nil {
				return "", nil, fmt.Errorf("filter %q: bad number %q", raw, hi)
			}
			f.Max = &v
		}
		return col.ID, f, nil
	case types.KindDate:
		lo, hi, ok := strings.Cut(expr, "..")
		if !ok {
			lo, hi = expr, expr
		}
		f := types.DateRangeFilter{}
		if lo != "" {
			t, err := time.Parse(types.DateLayout, lo)
			if err != nil {
				return "", nil, fmt.Errorf("filter %q: bad date %q (want %s)", raw, lo, types.DateLayout)
			}
			f.Start = &t
		}
		if hi != "" {
			t, err := time.Parse(types.DateLayout, hi)
			if err != nil {
				return "", nil, fmt.Errorf("filter %q: bad date %q (want %s)", raw, hi, types.DateLayout)
			}
			f.End = &t
		}
		return col.ID, f, nil
	default:
		return col.ID, types.TextFilter(expr), nil
	}
}

// printTable renders pivoted rows with a header of column labels. Cell-ID
// keys are internal plumbing and are not shown.
func printTable(columns []types.Column, rows []drive.TableRow) {
	ordered := make([]types.Column, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	header := make([]string, 0, len(ordered)+1)
	header = append(header, "#")
	for _, col := range ordered {
		header = append(header, col.Label)
	}
	fmt.Println(strings.Join(header, "\t"))

	for _, row := range rows {
		line := make([]string, 0, len(ordered)+1)
		line = append(line, fmt.Sprintf("%v", row["position"]))
		for _, col := range ordered {
			line = append(line, fmt.Sprintf("%v", row[col.ID]))
		}
		fmt.Println(strings.Join(line, "\t"))
	}
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "case-insensitive substring search across all columns")
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "column filter, col=value or col=min..max (repeatable)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "column to sort by (ID or label)")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "sort descending")
}
