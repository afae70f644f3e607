// Package query narrows, orders and pages the rows of a table.
package query

import (
	"errors"
	"sort"
	"strings"

	"sheetdash/internal/table"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultSortBy is the column used when a caller names none.
const DefaultSortBy = table.ColumnKey

// ErrInvalidPage reports a page or page size below 1.
var ErrInvalidPage = errors.New("page and page size must be positive")

// Params selects a window of the table. Empty Search, Status and Priority
// disable the respective stage.
type Params struct {
	Search    string
	Status    string
	Priority  string
	SortBy    string
	SortOrder SortOrder
	Page      int
	PageSize  int
}

// ParseSortOrder validates a user supplied direction. Empty means ascending.
func ParseSortOrder(raw string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SortAsc):
		return SortAsc, true
	case string(SortDesc):
		return SortDesc, true
	default:
		return "", false
	}
}

// Result is one page of filtered rows.
type Result struct {
	Rows       []table.Row
	Pagination Pagination
}

// Run applies search, status and priority filters, then the sort, then the
// page window.
func Run(t *table.Table, p Params) (Result, error) {
	if p.Page < 1 || p.PageSize < 1 {
		return Result{}, ErrInvalidPage
	}
	rows := Filter(t, p)
	Sort(t, rows, p.SortBy, p.SortOrder)
	page, info := Paginate(rows, p.Page, p.PageSize)
	return Result{Rows: page, Pagination: info}, nil
}

// Filter returns the rows that survive every enabled stage, in table order.
// Status and priority filters are skipped when the table lacks the column.
func Filter(t *table.Table, p Params) []table.Row {
	if t == nil {
		return nil
	}

	var searchCols []string
	needle := strings.ToLower(strings.TrimSpace(p.Search))
	if needle != "" {
		for _, col := range t.Columns {
			if col.Type == table.KindText {
				searchCols = append(searchCols, col.Name)
			}
		}
	}
	status := strings.TrimSpace(p.Status)
	if status != "" && !t.HasColumn(table.ColumnStatus) {
		status = ""
	}
	priority := strings.TrimSpace(p.Priority)
	if priority != "" && !t.HasColumn(table.ColumnPriority) {
		priority = ""
	}

	return t.Where(func(row table.Row) bool {
		if needle != "" && !matchesSearch(row, searchCols, needle) {
			return false
		}
		if status != "" && !matchesExact(row.Get(table.ColumnStatus), status) {
			return false
		}
		if priority != "" && !matchesExact(row.Get(table.ColumnPriority), priority) {
			return false
		}
		return true
	})
}

func matchesSearch(row table.Row, cols []string, needle string) bool {
	for _, name := range cols {
		v := row.Get(name)
		if v.IsNull() {
			continue
		}
		if strings.Contains(strings.ToLower(v.String()), needle) {
			return true
		}
	}
	return false
}

func matchesExact(v table.Value, want string) bool {
	return !v.IsNull() && v.String() == want
}

// Sort orders rows in place by the named column. Unknown columns leave the
// order unchanged. Ties keep their relative order and nulls sort last in
// both directions.
func Sort(t *table.Table, rows []table.Row, sortBy string, order SortOrder) {
	if t == nil || !t.HasColumn(sortBy) {
		return
	}
	desc := order == SortDesc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Get(sortBy), rows[j].Get(sortBy)
		if a.IsNull() || b.IsNull() {
			return !a.IsNull() && b.IsNull()
		}
		c := table.Compare(a, b)
		if desc {
			return c > 0
		}
		return c < 0
	})
}
