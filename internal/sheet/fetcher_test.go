package sheet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPFetcherFetch(t *testing.T) {
	var gotPath, gotSheet string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSheet = r.URL.Query().Get("sheet")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Key,Status\nISSUE-1,Done\n"))
	}))
	defer ts.Close()

	f := NewHTTPFetcher(ts.URL+"/d/%s/export?sheet=%s", 0)
	raw, err := f.Fetch(context.Background(), "doc-1", "Sprint Board")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.HasPrefix(raw, "Key,Status") {
		t.Fatalf("unexpected body %q", raw)
	}
	if gotPath != "/d/doc-1/export" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotSheet != "Sprint Board" {
		t.Fatalf("expected sheet name to round-trip, got %q", gotSheet)
	}
}

func TestHTTPFetcherErrors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer ts.Close()

		_, err := NewHTTPFetcher(ts.URL+"/%s?sheet=%s", 0).Fetch(context.Background(), "doc", "Sheet1")
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected FetchError, got %v", err)
		}
		if fetchErr.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", fetchErr.StatusCode)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := ts.URL + "/%s?sheet=%s"
		ts.Close()

		_, err := NewHTTPFetcher(endpoint, 0).Fetch(context.Background(), "doc", "Sheet1")
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || fetchErr.Err == nil {
			t.Fatalf("expected transport FetchError, got %v", err)
		}
	})

	t.Run("oversized export", func(t *testing.T) {
		const body = "Key,Status\nA-1,Done\nA-2,Open\nLAST-ROW,Done\n"
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		defer ts.Close()

		f := NewHTTPFetcher(ts.URL+"/%s?sheet=%s", 0)
		f.maxBytes = int64(len(body) - 1)
		raw, err := f.Fetch(context.Background(), "doc", "Sheet1")
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || !errors.Is(err, ErrExportTooLarge) {
			t.Fatalf("expected too-large FetchError, got raw=%q err=%v", raw, err)
		}

		f.maxBytes = int64(len(body))
		raw, err = f.Fetch(context.Background(), "doc", "Sheet1")
		if err != nil || raw != body {
			t.Fatalf("export at the limit should succeed, got raw=%q err=%v", raw, err)
		}
	})

	t.Run("missing document id", func(t *testing.T) {
		_, err := NewHTTPFetcher("", 0).Fetch(context.Background(), " ", "Sheet1")
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})
}

func TestExportURLDefault(t *testing.T) {
	f := NewHTTPFetcher("", 0)
	got := f.ExportURL("abc123", "Issues & Bugs")
	want := "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:csv&sheet=Issues+%26+Bugs"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
