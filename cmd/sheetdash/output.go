package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sheetdash/internal/analytics"
	"sheetdash/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeStructured(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

// formatRowLine renders one data row the way list output shows issues.
func formatRowLine(row map[string]any) string {
	return fmt.Sprintf("○ %s [%s] [%s] - %s",
		cellText(row["key"]), cellText(row["status"]), cellText(row["priority"]), cellText(row["summary"]))
}

func cellText(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case float64:
		return formatNumber(value)
	case string:
		if value == "" {
			return "-"
		}
		return value
	default:
		return fmt.Sprint(value)
	}
}

func formatNumber(f float64) string {
	return fmt.Sprintf("%g", f)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func formatStatusCounts(counts []analytics.StatusCount, indent string) []string {
	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		lines = append(lines, fmt.Sprintf("%s%s: %d (%s%%)", indent, c.Status, c.Count, formatNumber(c.Percentage)))
	}
	return lines
}
