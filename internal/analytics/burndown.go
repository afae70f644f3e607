package analytics

import (
	"time"

	"sheetdash/internal/table"
)

// HealthStatus grades a sprint by how far completion trails elapsed time.
type HealthStatus string

const (
	HealthNormal  HealthStatus = "normal"
	HealthWarning HealthStatus = "warning"
	HealthDanger  HealthStatus = "danger"
)

// DefaultSprintLength applies when the sheet lacks a start or end date.
const DefaultSprintLength = 14 * 24 * time.Hour

// MaxSprintDays bounds the burndown window. A window that would be longer,
// usually because of one mistyped date, keeps its end and starts this many
// days earlier.
const MaxSprintDays = 84

const dateLayout = "2006-01-02"

// SprintData is the headline block of a burndown.
type SprintData struct {
	SprintName           string       `json:"sprint_name"`
	StartDate            string       `json:"start_date"`
	EndDate              string       `json:"end_date"`
	TotalStoryPoints     float64      `json:"total_story_points"`
	CompletedStoryPoints float64      `json:"completed_story_points"`
	RemainingStoryPoints float64      `json:"remaining_story_points"`
	CompletionRate       float64      `json:"completion_rate"`
	TimeProgress         float64      `json:"time_progress"`
	Status               HealthStatus `json:"status"`
	TotalWorkingDays     int          `json:"total_working_days"`
	DaysElapsed          int          `json:"days_elapsed"`
	RemainingWorkingDays int          `json:"remaining_working_days"`
}

// DayProgress is one calendar day of the sprint window.
type DayProgress struct {
	Day             int      `json:"day"`
	Date            string   `json:"date"`
	IdealRemaining  float64  `json:"ideal_remaining"`
	ActualRemaining *float64 `json:"actual_remaining"`
	IsWorkingDay    bool     `json:"is_working_day"`
}

// ChartPoint is the chart-friendly form of DayProgress.
type ChartPoint struct {
	Day    int      `json:"day"`
	Date   string   `json:"date"`
	Ideal  float64  `json:"ideal"`
	Actual *float64 `json:"actual"`
}

// Burndown tracks remaining story points across a sprint.
type Burndown struct {
	SprintData    SprintData    `json:"sprint_data"`
	DailyProgress []DayProgress `json:"daily_progress"`
	ChartData     []ChartPoint  `json:"chart_data"`
}

// BuildBurndown computes the burndown of a named sprint, or of the most recent
// sprint when sprintName is empty.
//
// The window runs from the earliest Created to the latest Due date in scope.
// Completed rows burn down on their Resolved date, falling back to Updated and
// then to the first day of the window.
func BuildBurndown(t *table.Table, sprintName string, now time.Time) (Burndown, error) {
	if t == nil || !t.HasColumn(table.ColumnSprint) {
		return Burndown{}, ErrSprintNotFound
	}
	if sprintName == "" {
		inferred, ok := MostRecentSprint(t)
		if !ok {
			return Burndown{}, ErrSprintNotFound
		}
		sprintName = inferred
	}
	rows := sprintRows(t, sprintName)
	if len(rows) == 0 {
		return Burndown{}, ErrSprintNotFound
	}

	today := dateOf(now)
	start, end := sprintWindow(rows, today)

	var total, completed float64
	type burn struct {
		day    time.Time
		points float64
	}
	var burns []burn
	for _, row := range rows {
		pts, ok := row.Get(table.ColumnStoryPoints).Float()
		if !ok {
			continue
		}
		total += pts
		if !IsComplete(row.Get(table.ColumnStatus)) {
			continue
		}
		completed += pts
		burns = append(burns, burn{day: resolvedOn(row, start), points: pts})
	}

	totalDays := WorkingDays(start, end)
	elapsedUntil := today
	if end.Before(elapsedUntil) {
		elapsedUntil = end
	}
	elapsed := WorkingDays(start, elapsedUntil)
	rate := percent(completed, total)

	data := SprintData{
		SprintName:           sprintName,
		StartDate:            start.Format(dateLayout),
		EndDate:              end.Format(dateLayout),
		TotalStoryPoints:     round2(total),
		CompletedStoryPoints: round2(completed),
		RemainingStoryPoints: round2(total - completed),
		CompletionRate:       rate,
		TimeProgress:         percent(float64(elapsed), float64(totalDays)),
		Status:               Health(elapsed, totalDays, rate),
		TotalWorkingDays:     totalDays,
		DaysElapsed:          elapsed,
		RemainingWorkingDays: totalDays - elapsed,
	}

	out := Burndown{
		SprintData:    data,
		DailyProgress: make([]DayProgress, 0),
		ChartData:     make([]ChartPoint, 0),
	}
	// workedBefore counts working days in [start, day).
	workedBefore := 0
	for day, i := start, 1; !day.After(end); day, i = day.AddDate(0, 0, 1), i+1 {
		ideal := total
		if totalDays > 0 {
			ideal = total * float64(totalDays-workedBefore) / float64(totalDays)
		}
		ideal = round2(ideal)
		if isWorkingDay(day) {
			workedBefore++
		}

		var actual *float64
		if !day.After(today) {
			remaining := total
			for _, b := range burns {
				if !b.day.After(day) {
					remaining -= b.points
				}
			}
			remaining = round2(remaining)
			actual = &remaining
		}

		date := day.Format(dateLayout)
		out.DailyProgress = append(out.DailyProgress, DayProgress{
			Day:             i,
			Date:            date,
			IdealRemaining:  ideal,
			ActualRemaining: actual,
			IsWorkingDay:    isWorkingDay(day),
		})
		out.ChartData = append(out.ChartData, ChartPoint{Day: i, Date: date, Ideal: ideal, Actual: actual})
	}
	return out, nil
}

// sprintWindow picks the sprint start and end dates, at most MaxSprintDays
// apart.
func sprintWindow(rows []table.Row, today time.Time) (time.Time, time.Time) {
	start, end := rawSprintWindow(rows, today)
	if earliest := end.AddDate(0, 0, -MaxSprintDays); start.Before(earliest) {
		start = earliest
	}
	return start, end
}

func rawSprintWindow(rows []table.Row, today time.Time) (time.Time, time.Time) {
	start, hasStart := minTime(rows, table.ColumnCreated)
	end, hasEnd := maxTime(rows, table.ColumnDueDate)
	switch {
	case hasStart && hasEnd:
		return dateOf(start), dateOf(end)
	case hasStart:
		start = dateOf(start)
		return start, start.Add(DefaultSprintLength)
	case hasEnd:
		end = dateOf(end)
		return end.Add(-DefaultSprintLength), end
	default:
		return today, today.Add(DefaultSprintLength)
	}
}

func resolvedOn(row table.Row, fallback time.Time) time.Time {
	for _, column := range []string{table.ColumnResolved, table.ColumnUpdated} {
		if ts, ok := row.Get(column).TimeValue(); ok {
			return dateOf(ts)
		}
	}
	return fallback
}

// WorkingDays counts weekdays in [start, end) by calendar date. It is 0 when
// start is not before end.
func WorkingDays(start, end time.Time) int {
	start, end = dateOf(start), dateOf(end)
	n := 0
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if isWorkingDay(day) {
			n++
		}
	}
	return n
}

func isWorkingDay(day time.Time) bool {
	wd := day.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Health compares time progress with completion: a gap under 10 points is
// normal, under 20 a warning, otherwise danger.
func Health(elapsedDays, totalDays int, completionRate float64) HealthStatus {
	if totalDays <= 0 {
		return HealthNormal
	}
	timeProgress := float64(elapsedDays) / float64(totalDays) * 100
	gap := timeProgress - completionRate
	switch {
	case gap < 10:
		return HealthNormal
	case gap < 20:
		return HealthWarning
	default:
		return HealthDanger
	}
}
