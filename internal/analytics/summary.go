// Package analytics derives sheet metadata, filter options and sprint
// statistics from a parsed table. Every result is computed on demand.
package analytics

import (
	"math"
	"sort"
	"time"

	"sheetdash/internal/table"
)

// ColumnInfo is one column and its semantic kind.
type ColumnInfo struct {
	Name string             `json:"name"`
	Type table.SemanticKind `json:"type"`
}

// Summary describes the sheet as currently cached.
type Summary struct {
	SheetID      string       `json:"sheet_id"`
	SheetName    string       `json:"sheet_name"`
	TotalRows    int          `json:"total_rows"`
	TotalColumns int          `json:"total_columns"`
	Columns      []ColumnInfo `json:"columns"`
	LastUpdated  time.Time    `json:"last_updated"`
}

// BuildSummary reports row and column counts plus per-column kinds.
func BuildSummary(t *table.Table, sheetID, sheetName string, now time.Time) Summary {
	cols := make([]ColumnInfo, 0)
	if t != nil {
		for _, col := range t.Columns {
			cols = append(cols, ColumnInfo{Name: col.Name, Type: table.ClassifyColumn(col.Name)})
		}
	}
	return Summary{
		SheetID:      sheetID,
		SheetName:    sheetName,
		TotalRows:    t.Len(),
		TotalColumns: len(cols),
		Columns:      cols,
		LastUpdated:  now,
	}
}

// DistinctValues returns the sorted, duplicate free, non-null values of a
// column. A missing column yields an empty list.
func DistinctValues(t *table.Table, column string) []string {
	out := make([]string, 0)
	if t == nil || !t.HasColumn(column) {
		return out
	}
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		v := row.Get(column)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(part / whole * 100)
}
