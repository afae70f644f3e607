package main

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDataFlagsValues(t *testing.T) {
	flags := dataFlags{page: 2, pageSize: 25, sortBy: " Created ", sortOrder: "desc", status: "Done", search: "  "}
	got := flags.values()

	want := map[string][]string{
		"page":       {"2"},
		"page_size":  {"25"},
		"sort_by":    {"Created"},
		"sort_order": {"desc"},
		"status":     {"Done"},
	}
	if diff := cmp.Diff(want, map[string][]string(got)); diff != "" {
		t.Fatalf("query mismatch (-want +got):\n%s", diff)
	}

	if empty := (dataFlags{}).values(); len(empty) != 0 {
		t.Fatalf("expected no params for zero flags, got %v", empty)
	}
}

func TestFormatRowLine(t *testing.T) {
	row := map[string]any{
		"key":      "A-1",
		"status":   "In Progress",
		"priority": nil,
		"summary":  "Fix login",
	}
	if got, want := formatRowLine(row), "○ A-1 [In Progress] [-] - Fix login"; got != want {
		t.Fatalf("formatRowLine() = %q, want %q", got, want)
	}
}

func TestCellText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{"", "-"},
		{"Done", "Done"},
		{float64(3), "3"},
		{2.5, "2.5"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := cellText(tc.in); got != tc.want {
			t.Errorf("cellText(%#v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(nil); got != "-" {
		t.Fatalf("formatDate(nil) = %q", got)
	}
	d := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	if got := formatDate(&d); got != "2025-01-31" {
		t.Fatalf("formatDate() = %q", got)
	}
}
