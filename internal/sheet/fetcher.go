// Package sheet retrieves the raw delimited export of a spreadsheet tab.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultExportURL is the Google Sheets CSV export endpoint. The two
	// verbs receive the document id and the query-escaped sheet name.
	DefaultExportURL = "https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s"

	DefaultTimeout = 30 * time.Second

	maxExportBytes = 64 << 20
)

// ErrExportTooLarge reports an export that exceeded the size limit. A
// truncated CSV would still parse, so the fetch fails instead.
var ErrExportTooLarge = errors.New("export exceeds size limit")

// Fetcher returns the full delimited export of one sheet, header included.
type Fetcher interface {
	Fetch(ctx context.Context, documentID, sheetName string) (string, error)
}

// FetchError reports a failed export request.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch sheet export: status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch sheet export: %v", e.Err)
	}
	return "fetch sheet export failed"
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPFetcher downloads exports over HTTP.
type HTTPFetcher struct {
	exportURL string
	http      *http.Client
	maxBytes  int64
}

// NewHTTPFetcher builds a fetcher. An empty exportURL selects
// DefaultExportURL and a non-positive timeout selects DefaultTimeout.
func NewHTTPFetcher(exportURL string, timeout time.Duration) *HTTPFetcher {
	exportURL = strings.TrimSpace(exportURL)
	if exportURL == "" {
		exportURL = DefaultExportURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		exportURL: exportURL,
		http:      &http.Client{Timeout: timeout},
		maxBytes:  maxExportBytes,
	}
}

// ExportURL renders the export URL for a document and sheet.
func (f *HTTPFetcher) ExportURL(documentID, sheetName string) string {
	return fmt.Sprintf(f.exportURL, url.PathEscape(documentID), url.QueryEscape(sheetName))
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, documentID, sheetName string) (string, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return "", &FetchError{Err: fmt.Errorf("document id is required")}
	}

	endpoint := f.ExportURL(documentID, sheetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &FetchError{URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.http.Do(req)
	if err != nil {
		return "", &FetchError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &FetchError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", &FetchError{URL: endpoint, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return "", &FetchError{URL: endpoint, Err: fmt.Errorf("%w (%d bytes)", ErrExportTooLarge, f.maxBytes)}
	}
	return string(body), nil
}
