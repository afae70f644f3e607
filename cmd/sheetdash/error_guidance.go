package main

import (
	"context"
	"errors"
	"net"

	"sheetdash/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.SourceUnavailable():
			lines = append(lines,
				"hint: the server could not read the spreadsheet; check sheet.document_id and that the sheet is shared for export.",
				"hint: sheetdash info shows the configured document and cache state.",
			)
		case apiErr.Throttled():
			lines = append(lines, "hint: a refresh is already running; retry shortly.")
		case apiErr.Code == "":
			lines = append(lines, "hint: verify SHEETDASH_API_URL points to a sheetdash server.")
		case apiErr.Status >= 500:
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; the sheet export may be slow. Increase SHEETDASH_HTTP_TIMEOUT or sheet.fetch_timeout.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a sheetdash server is running at SHEETDASH_API_URL.",
			"hint: start local server manually with: sheetdash srv",
			"hint: you can increase SHEETDASH_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
