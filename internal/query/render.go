package query

import (
	"strings"
	"time"

	"sheetdash/internal/table"
)

var keyReplacer = strings.NewReplacer(" ", "_", ".", "_")

// NormalizeKey converts a column name to its output key: lowercase with
// spaces and dots replaced by underscores ("Due date" becomes "due_date").
func NormalizeKey(name string) string {
	return keyReplacer.Replace(strings.ToLower(name))
}

// RenderValue converts a cell to a JSON friendly value.
func RenderValue(v table.Value) any {
	switch v.Kind() {
	case table.KindNull:
		return nil
	case table.KindNumber:
		f, _ := v.Float()
		return f
	case table.KindTime:
		tm, _ := v.TimeValue()
		return tm.Format(time.RFC3339)
	default:
		return v.String()
	}
}

// RenderRows converts rows to output records keyed by normalized column name.
// Every record carries every column of the table.
func RenderRows(t *table.Table, rows []table.Row) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	if t == nil {
		return out
	}
	keys := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		keys[i] = NormalizeKey(col.Name)
	}
	for _, row := range rows {
		rec := make(map[string]any, len(keys))
		for i, col := range t.Columns {
			rec[keys[i]] = RenderValue(row.Get(col.Name))
		}
		out = append(out, rec)
	}
	return out
}
