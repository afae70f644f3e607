package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTimeoutFromEnv(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})

	t.Run("duration format", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "45s")
		if got := httpTimeoutFromEnv(); got != 45*time.Second {
			t.Fatalf("expected 45s timeout, got %v", got)
		}
	})

	t.Run("integer seconds", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "25")
		if got := httpTimeoutFromEnv(); got != 25*time.Second {
			t.Fatalf("expected 25s timeout, got %v", got)
		}
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(httpTimeoutEnvKey, "invalid")
		if got := httpTimeoutFromEnv(); got != defaultHTTPTimeout {
			t.Fatalf("expected default timeout %v, got %v", defaultHTTPTimeout, got)
		}
	})
}

func TestClientSprintProgressQuery(t *testing.T) {
	var gotPath, gotSprint string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSprint = r.URL.Query().Get("sprint_name")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"sprint_name":"Sprint 7","total_stories":3},"message":"ok"}`))
	}))
	defer ts.Close()

	resp, err := NewClient(ts.URL).SprintProgress(context.Background(), "Sprint 7")
	if err != nil {
		t.Fatalf("sprint progress: %v", err)
	}
	if gotPath != "/v1/sprints/progress" || gotSprint != "Sprint 7" {
		t.Fatalf("unexpected request: path=%q sprint=%q", gotPath, gotSprint)
	}
	if !resp.Success || resp.Data.SprintName != "Sprint 7" || resp.Data.TotalStories != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClientBurndownEscapesName(t *testing.T) {
	var gotRawPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"sprint_data":{"sprint_name":"Sprint 1"}}`))
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL).Burndown(context.Background(), "Sprint 1"); err != nil {
		t.Fatalf("burndown: %v", err)
	}
	if gotRawPath != "/v1/sprints/Sprint%201/burndown" {
		t.Fatalf("unexpected path: %s", gotRawPath)
	}
}

func TestClientDecodesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"dataset fetch failed: boom","code":"source_unavailable","error_code":4006}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Summary(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.ErrorCode != 4006 {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !apiErr.SourceUnavailable() {
		t.Fatal("expected source unavailable")
	}
	if apiErr.Error() != "source_unavailable: dataset fetch failed: boom" {
		t.Fatalf("unexpected message: %s", apiErr.Error())
	}
}

func TestClientNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Refresh(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if !apiErr.Throttled() {
		t.Fatalf("expected throttled error, got %+v", apiErr)
	}
}
