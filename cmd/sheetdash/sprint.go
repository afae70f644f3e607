package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sheetdash/internal/api"
	"sheetdash/internal/config"
)

func newSprintCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Inspect sprints",
	}

	cmd.AddCommand(
		newSprintProgressCmd(cfg, machine),
		newSprintListCmd(cfg, machine),
		newSprintBurndownCmd(cfg, machine),
	)
	return cmd
}

func newSprintProgressCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "progress [name]",
		Short: "Show progress for a sprint (defaults to the most recent)",
		Args:  requireAtMostArgs(1, "at most one sprint name is allowed"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.SprintProgress(cmd.Context(), name)
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				p := resp.Data
				remaining := "-"
				if p.RemainingWorkDays != nil {
					remaining = strconv.Itoa(*p.RemainingWorkDays)
				}
				lines := []string{
					fmt.Sprintf("sprint: %s", p.SprintName),
					fmt.Sprintf("stories: %d/%d (%s%%)", p.CompletedStories, p.TotalStories, formatNumber(p.CompletionPercentage)),
					fmt.Sprintf("story points: %s/%s (%s%%)", formatNumber(p.CompletedStoryPoints), formatNumber(p.TotalStoryPoints), formatNumber(p.StoryPointsCompletionPercentage)),
					fmt.Sprintf("end date: %s", formatDate(p.SprintEndDate)),
					fmt.Sprintf("remaining days: %s", remaining),
					"status:",
				}
				lines = append(lines, formatStatusCounts(p.StatusBreakdown, "  ")...)
				lines = append(lines, fmt.Sprintf("bugs: %d", p.BugInfo.TotalBugs))
				lines = append(lines, formatStatusCounts(p.BugInfo.BugsByStatus, "  ")...)
				return writeLines(lines)
			})
		},
	}
}

func newSprintListCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sprints found in the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Sprints(cmd.Context())
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}
				if len(resp.Sprints) == 0 {
					return writePlain("no sprints\n")
				}

				lines := make([]string, 0, len(resp.Sprints))
				for _, sp := range resp.Sprints {
					marker := " "
					if sp.Name == resp.Current {
						marker = "*"
					}
					lines = append(lines, fmt.Sprintf("%s %s  %d/%d stories  %s pts  ends %s",
						marker, sp.Name, sp.CompletedStories, sp.Stories, formatNumber(sp.StoryPoints), formatDate(sp.EndDate)))
				}
				return writeLines(lines)
			})
		},
	}
}

func newSprintBurndownCmd(cfg *config.Config, machine func() bool) *cobra.Command {
	return &cobra.Command{
		Use:   "burndown <name>",
		Short: "Show the burndown for a sprint",
		Args:  requireExactlyArgs(1, "sprint name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Burndown(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if machine() {
					return writeStructured(resp)
				}

				sd := resp.SprintData
				lines := []string{
					fmt.Sprintf("sprint: %s (%s .. %s) [%s]", sd.SprintName, sd.StartDate, sd.EndDate, sd.Status),
					fmt.Sprintf("points: %s done, %s remaining of %s", formatNumber(sd.CompletedStoryPoints), formatNumber(sd.RemainingStoryPoints), formatNumber(sd.TotalStoryPoints)),
					fmt.Sprintf("working days: %d elapsed, %d remaining of %d", sd.DaysElapsed, sd.RemainingWorkingDays, sd.TotalWorkingDays),
				}
				for _, day := range resp.DailyProgress {
					actual := "-"
					if day.ActualRemaining != nil {
						actual = formatNumber(*day.ActualRemaining)
					}
					lines = append(lines, fmt.Sprintf("  %s  ideal %s  actual %s", day.Date, formatNumber(day.IdealRemaining), actual))
				}
				return writeLines(lines)
			})
		},
	}
}
