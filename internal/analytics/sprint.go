package analytics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"sheetdash/internal/table"
)

// CurrentSprintName labels results computed without a sprint scope.
const CurrentSprintName = "Current Sprint"

// BugIssueType marks rows counted in the bug sub-aggregate.
const BugIssueType = "Bug"

// ErrSprintNotFound reports a sprint name with no matching rows.
var ErrSprintNotFound = errors.New("sprint not found")

var completeStatuses = map[string]struct{}{
	"Done":     {},
	"Resolved": {},
	"Closed":   {},
	"Complete": {},
}

// IsComplete reports whether a status counts as finished work. The match is
// exact and case sensitive.
func IsComplete(status table.Value) bool {
	if status.IsNull() {
		return false
	}
	_, ok := completeStatuses[status.String()]
	return ok
}

// StatusCount is one entry of a status breakdown.
type StatusCount struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BugInfo summarizes the bugs in scope. Severity is the Priority column; the
// sheet carries no dedicated severity field.
type BugInfo struct {
	TotalBugs      int            `json:"total_bugs"`
	BugsBySeverity map[string]int `json:"bugs_by_severity"`
	BugsByStatus   []StatusCount  `json:"bugs_by_status"`
}

// SprintProgress is the aggregate for one sprint, or the whole table when the
// sheet has no Sprint column.
type SprintProgress struct {
	SprintName                      string        `json:"sprint_name"`
	TotalStories                    int           `json:"total_stories"`
	CompletedStories                int           `json:"completed_stories"`
	CompletionPercentage            float64       `json:"completion_percentage"`
	TotalStoryPoints                float64       `json:"total_story_points"`
	CompletedStoryPoints            float64       `json:"completed_story_points"`
	StoryPointsCompletionPercentage float64       `json:"story_points_completion_percentage"`
	RemainingWorkDays               *int          `json:"remaining_work_days"`
	SprintEndDate                   *time.Time    `json:"sprint_end_date"`
	StatusBreakdown                 []StatusCount `json:"status_breakdown"`
	BugInfo                         BugInfo       `json:"bug_info"`
	LastUpdated                     time.Time     `json:"last_updated"`
}

// Progress computes completion, story point, status and bug statistics. An
// empty sprintName selects the most recent sprint.
func Progress(t *table.Table, sprintName string, now time.Time) SprintProgress {
	name, rows := scope(t, strings.TrimSpace(sprintName))

	out := SprintProgress{
		SprintName:   name,
		TotalStories: len(rows),
		LastUpdated:  now,
	}

	var bugs []table.Row
	for _, row := range rows {
		done := IsComplete(row.Get(table.ColumnStatus))
		if done {
			out.CompletedStories++
		}
		if pts, ok := row.Get(table.ColumnStoryPoints).Float(); ok {
			out.TotalStoryPoints += pts
			if done {
				out.CompletedStoryPoints += pts
			}
		}
		if issueType := row.Get(table.ColumnIssueType); !issueType.IsNull() && issueType.String() == BugIssueType {
			bugs = append(bugs, row)
		}
	}

	out.CompletionPercentage = percent(float64(out.CompletedStories), float64(out.TotalStories))
	out.StoryPointsCompletionPercentage = percent(out.CompletedStoryPoints, out.TotalStoryPoints)
	out.TotalStoryPoints = round2(out.TotalStoryPoints)
	out.CompletedStoryPoints = round2(out.CompletedStoryPoints)
	out.StatusBreakdown = StatusBreakdown(rows)
	out.BugInfo = buildBugInfo(bugs)

	if end, ok := maxTime(rows, table.ColumnDueDate); ok {
		days := daysBetween(now, end)
		out.SprintEndDate = &end
		out.RemainingWorkDays = &days
	}
	return out
}

// scope resolves the sprint name and its rows.
func scope(t *table.Table, sprintName string) (string, []table.Row) {
	if t == nil {
		return CurrentSprintName, nil
	}
	if !t.HasColumn(table.ColumnSprint) {
		return CurrentSprintName, t.Rows
	}
	if sprintName == "" {
		inferred, ok := MostRecentSprint(t)
		if !ok {
			return CurrentSprintName, t.Rows
		}
		sprintName = inferred
	}
	return sprintName, sprintRows(t, sprintName)
}

func sprintRows(t *table.Table, sprintName string) []table.Row {
	return t.Where(func(row table.Row) bool {
		v := row.Get(table.ColumnSprint)
		return !v.IsNull() && v.String() == sprintName
	})
}

// StatusBreakdown counts rows per non-null status, most frequent first. Ties
// keep first-seen order. Percentages are relative to len(rows).
func StatusBreakdown(rows []table.Row) []StatusCount {
	out := make([]StatusCount, 0)
	index := make(map[string]int)
	for _, row := range rows {
		v := row.Get(table.ColumnStatus)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if i, ok := index[s]; ok {
			out[i].Count++
			continue
		}
		index[s] = len(out)
		out = append(out, StatusCount{Status: s, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	for i := range out {
		out[i].Percentage = percent(float64(out[i].Count), float64(len(rows)))
	}
	return out
}

func buildBugInfo(bugs []table.Row) BugInfo {
	info := BugInfo{
		TotalBugs:      len(bugs),
		BugsBySeverity: make(map[string]int),
		BugsByStatus:   StatusBreakdown(bugs),
	}
	for _, row := range bugs {
		v := row.Get(table.ColumnPriority)
		if v.IsNull() {
			continue
		}
		info.BugsBySeverity[v.String()]++
	}
	return info
}

// sprintLabels returns the distinct non-blank sprint labels in encounter order.
func sprintLabels(t *table.Table) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		v := row.Get(table.ColumnSprint)
		if v.IsNull() || strings.TrimSpace(v.String()) == "" {
			continue
		}
		s := v.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// MostRecentSprint infers the current sprint: the only label if there is one,
// else the sprint with the latest due date, else the latest creation date,
// else the first label seen. Ties go to the sprint seen first.
func MostRecentSprint(t *table.Table) (string, bool) {
	if t == nil || !t.HasColumn(table.ColumnSprint) {
		return "", false
	}
	labels := sprintLabels(t)
	switch len(labels) {
	case 0:
		return "", false
	case 1:
		return labels[0], true
	}

	for _, column := range []string{table.ColumnDueDate, table.ColumnCreated} {
		if !t.HasColumn(column) {
			continue
		}
		if name, ok := latestByColumn(t, labels, column); ok {
			return name, true
		}
	}
	return labels[0], true
}

func latestByColumn(t *table.Table, labels []string, column string) (string, bool) {
	latest := make(map[string]time.Time, len(labels))
	for _, row := range t.Rows {
		sprint := row.Get(table.ColumnSprint)
		if sprint.IsNull() {
			continue
		}
		ts, ok := row.Get(column).TimeValue()
		if !ok {
			continue
		}
		name := sprint.String()
		if cur, ok := latest[name]; !ok || ts.After(cur) {
			latest[name] = ts
		}
	}

	var best string
	var bestAt time.Time
	found := false
	for _, name := range labels {
		ts, ok := latest[name]
		if !ok {
			continue
		}
		if !found || ts.After(bestAt) {
			best, bestAt, found = name, ts, true
		}
	}
	return best, found
}

// SprintSummary is one entry of the sprint list.
type SprintSummary struct {
	Name             string     `json:"name"`
	Stories          int        `json:"stories"`
	CompletedStories int        `json:"completed_stories"`
	StoryPoints      float64    `json:"story_points"`
	EndDate          *time.Time `json:"end_date,omitempty"`
}

// SprintList enumerates the sprints found in the sheet.
type SprintList struct {
	Sprints []SprintSummary `json:"sprints"`
	Current string          `json:"current,omitempty"`
}

// ListSprints returns every sprint in encounter order together with the
// inferred current sprint.
func ListSprints(t *table.Table) SprintList {
	out := SprintList{Sprints: make([]SprintSummary, 0)}
	if t == nil || !t.HasColumn(table.ColumnSprint) {
		return out
	}
	for _, name := range sprintLabels(t) {
		rows := sprintRows(t, name)
		s := SprintSummary{Name: name, Stories: len(rows)}
		for _, row := range rows {
			done := IsComplete(row.Get(table.ColumnStatus))
			if done {
				s.CompletedStories++
			}
			if pts, ok := row.Get(table.ColumnStoryPoints).Float(); ok {
				s.StoryPoints += pts
			}
		}
		s.StoryPoints = round2(s.StoryPoints)
		if end, ok := maxTime(rows, table.ColumnDueDate); ok {
			s.EndDate = &end
		}
		out.Sprints = append(out.Sprints, s)
	}
	out.Current, _ = MostRecentSprint(t)
	return out
}

func maxTime(rows []table.Row, column string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, row := range rows {
		ts, ok := row.Get(column).TimeValue()
		if !ok {
			continue
		}
		if !found || ts.After(best) {
			best, found = ts, true
		}
	}
	return best, found
}

func minTime(rows []table.Row, column string) (time.Time, bool) {
	var best time.Time
	found := false
	for _, row := range rows {
		ts, ok := row.Get(column).TimeValue()
		if !ok {
			continue
		}
		if !found || ts.Before(best) {
			best, found = ts, true
		}
	}
	return best, found
}

// dateOf truncates t to midnight UTC of its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween is the number of calendar days from a's date to b's date.
func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}
