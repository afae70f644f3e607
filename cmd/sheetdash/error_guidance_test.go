package main

import (
	"context"
	"fmt"
	"net"
	"testing"

	"sheetdash/internal/api"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a sheetdash server is running at SHEETDASH_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: sheetdash srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify SHEETDASH_API_URL points to a sheetdash server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_SourceUnavailableGuidance(t *testing.T) {
	err := &api.APIError{Status: 503, Code: "source_unavailable", ErrorCode: 4006, Message: "dataset fetch failed: status 404"}
	lines := formatCLIError(err)
	if lines[0] != "source_unavailable: dataset fetch failed: status 404" {
		t.Fatalf("expected error first, got %v", lines)
	}
	if !containsLine(lines, "hint: sheetdash info shows the configured document and cache state.") {
		t.Fatalf("expected sheet guidance, got %v", lines)
	}
	if containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("did not expect internal-error guidance, got %v", lines)
	}
}

func TestFormatCLIError_ThrottledGuidance(t *testing.T) {
	err := &api.APIError{Status: 429, Code: "resource_exhausted", Message: "too many concurrent refresh requests"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: a refresh is already running; retry shortly.") {
		t.Fatalf("expected throttle guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIInternalGuidance(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestFormatCLIError_TimeoutGuidance(t *testing.T) {
	err := fmt.Errorf("summary: %w", context.DeadlineExceeded)
	lines := formatCLIError(err)
	if len(lines) != 2 {
		t.Fatalf("expected error and one hint, got %v", lines)
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
