package analytics

import (
	"strings"
	"time"

	"sheetdash/internal/table"
)

// DateRange is an inclusive span of observed dates.
type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// FilterOptions lists the values a client can filter by.
//
// The sheet has no assignee column; Assignee is sourced from Projects.
type FilterOptions struct {
	Status           []string   `json:"status"`
	Priority         []string   `json:"priority"`
	Assignee         []string   `json:"assignee"`
	CreatedDateRange *DateRange `json:"created_date_range,omitempty"`
}

// AvailableFilters echoes the distinct values of the filterable columns.
type AvailableFilters struct {
	Status   []string `json:"status"`
	Priority []string `json:"priority"`
}

// FilterInfo reports which filters a request applied.
type FilterInfo struct {
	Applied   []string         `json:"applied"`
	Available AvailableFilters `json:"available"`
}

// BuildFilterOptions collects distinct status, priority and project values and
// the range of creation dates.
func BuildFilterOptions(t *table.Table) FilterOptions {
	return FilterOptions{
		Status:           DistinctValues(t, table.ColumnStatus),
		Priority:         DistinctValues(t, table.ColumnPriority),
		Assignee:         DistinctValues(t, table.ColumnProjects),
		CreatedDateRange: dateRange(t, table.ColumnCreated),
	}
}

// BuildFilterInfo names the non-empty filters among status and priority.
func BuildFilterInfo(t *table.Table, status, priority string) FilterInfo {
	applied := make([]string, 0, 2)
	if strings.TrimSpace(status) != "" {
		applied = append(applied, "status")
	}
	if strings.TrimSpace(priority) != "" {
		applied = append(applied, "priority")
	}
	return FilterInfo{
		Applied: applied,
		Available: AvailableFilters{
			Status:   DistinctValues(t, table.ColumnStatus),
			Priority: DistinctValues(t, table.ColumnPriority),
		},
	}
}

func dateRange(t *table.Table, column string) *DateRange {
	if t == nil || !t.HasColumn(column) {
		return nil
	}
	var out *DateRange
	for _, row := range t.Rows {
		ts, ok := row.Get(column).TimeValue()
		if !ok {
			continue
		}
		if out == nil {
			out = &DateRange{Min: ts, Max: ts}
			continue
		}
		if ts.Before(out.Min) {
			out.Min = ts
		}
		if ts.After(out.Max) {
			out.Max = ts
		}
	}
	return out
}
