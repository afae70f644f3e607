package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWorkingDays(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"two weeks", ymd(2025, 1, 6), ymd(2025, 1, 17), 9},
		{"full two weeks", ymd(2025, 1, 6), ymd(2025, 1, 20), 10},
		{"weekend only", ymd(2025, 1, 11), ymd(2025, 1, 13), 0},
		{"same day", ymd(2025, 1, 6), ymd(2025, 1, 6), 0},
		{"reversed", ymd(2025, 1, 17), ymd(2025, 1, 6), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WorkingDays(tc.start, tc.end); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	cases := []struct {
		elapsed, total int
		rate           float64
		want           HealthStatus
	}{
		{5, 10, 50, HealthNormal},
		{5, 10, 41, HealthNormal},
		{5, 10, 35, HealthWarning},
		{5, 10, 30, HealthDanger},
		{10, 10, 0, HealthDanger},
		{0, 0, 0, HealthNormal},
	}
	for _, tc := range cases {
		if got := Health(tc.elapsed, tc.total, tc.rate); got != tc.want {
			t.Fatalf("Health(%d, %d, %v): expected %s, got %s", tc.elapsed, tc.total, tc.rate, tc.want, got)
		}
	}
}

const burndownCSV = `Key,Sprint,Status,Story Points,Created,Due date,Resolved
A-1,S1,Done,5,2025-01-06,2025-01-17,2025-01-08
A-2,S1,Open,5,2025-01-07,,
A-3,S2,Open,3,2025-01-20,2025-01-31,
`

func TestBuildBurndown(t *testing.T) {
	tbl := mustParse(t, burndownCSV)
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	got, err := BuildBurndown(tbl, "S1", now)
	if err != nil {
		t.Fatalf("burndown: %v", err)
	}
	wantData := SprintData{
		SprintName:           "S1",
		StartDate:            "2025-01-06",
		EndDate:              "2025-01-17",
		TotalStoryPoints:     10,
		CompletedStoryPoints: 5,
		RemainingStoryPoints: 5,
		CompletionRate:       50,
		TimeProgress:         44.44,
		Status:               HealthNormal,
		TotalWorkingDays:     9,
		DaysElapsed:          4,
		RemainingWorkingDays: 5,
	}
	if diff := cmp.Diff(wantData, got.SprintData); diff != "" {
		t.Fatalf("unexpected sprint data (-want +got):\n%s", diff)
	}

	if len(got.DailyProgress) != 12 || len(got.ChartData) != 12 {
		t.Fatalf("expected 12 days, got %d/%d", len(got.DailyProgress), len(got.ChartData))
	}
	first, third, last := got.DailyProgress[0], got.DailyProgress[2], got.DailyProgress[11]
	if first.Day != 1 || first.Date != "2025-01-06" || first.IdealRemaining != 10 || *first.ActualRemaining != 10 {
		t.Fatalf("unexpected first day: %+v", first)
	}
	if third.IdealRemaining != 7.78 || *third.ActualRemaining != 5 {
		t.Fatalf("unexpected third day: %+v", third)
	}
	if last.IdealRemaining != 0 || last.ActualRemaining != nil {
		t.Fatalf("unexpected last day: %+v", last)
	}
	if got.DailyProgress[5].IsWorkingDay || !got.DailyProgress[4].IsWorkingDay {
		t.Fatalf("expected 2025-01-11 to be a weekend and 2025-01-10 a working day")
	}
	if got.ChartData[2].Ideal != third.IdealRemaining || got.ChartData[2].Date != third.Date {
		t.Fatalf("chart data out of sync: %+v", got.ChartData[2])
	}
}

func TestBuildBurndownInfersSprint(t *testing.T) {
	tbl := mustParse(t, burndownCSV)
	got, err := BuildBurndown(tbl, "", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("burndown: %v", err)
	}
	if got.SprintData.SprintName != "S2" {
		t.Fatalf("expected S2, got %q", got.SprintData.SprintName)
	}
	if got.SprintData.DaysElapsed != 0 {
		t.Fatalf("expected no elapsed days before the sprint starts, got %d", got.SprintData.DaysElapsed)
	}
}

func TestBuildBurndownDefaultWindow(t *testing.T) {
	tbl := mustParse(t, "Key,Sprint,Status,Story Points\nA-1,S1,Open,2\n")
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	got, err := BuildBurndown(tbl, "S1", now)
	if err != nil {
		t.Fatalf("burndown: %v", err)
	}
	if got.SprintData.StartDate != "2025-01-06" || got.SprintData.EndDate != "2025-01-20" {
		t.Fatalf("unexpected window %s..%s", got.SprintData.StartDate, got.SprintData.EndDate)
	}
	if got.SprintData.TotalWorkingDays != 10 {
		t.Fatalf("expected 10 working days, got %d", got.SprintData.TotalWorkingDays)
	}
}

func TestBuildBurndownClampsStrayDates(t *testing.T) {
	raw := "Key,Sprint,Status,Story Points,Created,Due date\n" +
		"A-1,S1,Open,3,1/1/1990,2025-01-20\n" +
		"A-2,S1,Done,2,2025-01-06,\n"
	tbl := mustParse(t, raw)
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	got, err := BuildBurndown(tbl, "S1", now)
	if err != nil {
		t.Fatalf("burndown: %v", err)
	}
	wantStart := ymd(2025, 1, 20).AddDate(0, 0, -MaxSprintDays)
	if got.SprintData.StartDate != wantStart.Format(dateLayout) || got.SprintData.EndDate != "2025-01-20" {
		t.Fatalf("unexpected window %s..%s", got.SprintData.StartDate, got.SprintData.EndDate)
	}
	if len(got.DailyProgress) != MaxSprintDays+1 {
		t.Fatalf("expected %d days, got %d", MaxSprintDays+1, len(got.DailyProgress))
	}
	if want := WorkingDays(wantStart, ymd(2025, 1, 20)); got.SprintData.TotalWorkingDays != want {
		t.Fatalf("expected %d working days, got %d", want, got.SprintData.TotalWorkingDays)
	}
	if last := got.DailyProgress[len(got.DailyProgress)-1]; last.IdealRemaining != 0 {
		t.Fatalf("expected ideal line to reach zero, got %+v", last)
	}
}

func TestBuildBurndownUnknownSprint(t *testing.T) {
	tbl := mustParse(t, burndownCSV)
	if _, err := BuildBurndown(tbl, "S9", time.Now()); !errors.Is(err, ErrSprintNotFound) {
		t.Fatalf("expected ErrSprintNotFound, got %v", err)
	}
	noSprint := mustParse(t, "Key\nA-1\n")
	if _, err := BuildBurndown(noSprint, "S1", time.Now()); !errors.Is(err, ErrSprintNotFound) {
		t.Fatalf("expected ErrSprintNotFound, got %v", err)
	}
}
