package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "SHEETDASH_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the sheetdash API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

// Health probes the source sheet through the server.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.do(ctx, http.MethodGet, "/v1/health", nil, nil, &resp)
	return resp, err
}

func (c *Client) Summary(ctx context.Context) (SummaryResponse, error) {
	var resp SummaryResponse
	err := c.do(ctx, http.MethodGet, "/v1/table/summary", nil, nil, &resp)
	return resp, err
}

// Data fetches one page of rows. query carries page, page_size, sort_by,
// sort_order, search, status and priority.
func (c *Client) Data(ctx context.Context, query url.Values) (DataResponse, error) {
	var resp DataResponse
	err := c.do(ctx, http.MethodGet, "/v1/table/data", query, nil, &resp)
	return resp, err
}

func (c *Client) Filters(ctx context.Context) (FilterOptionsResponse, error) {
	var resp FilterOptionsResponse
	err := c.do(ctx, http.MethodGet, "/v1/table/filters", nil, nil, &resp)
	return resp, err
}

func (c *Client) Sprints(ctx context.Context) (SprintListResponse, error) {
	var resp SprintListResponse
	err := c.do(ctx, http.MethodGet, "/v1/sprints", nil, nil, &resp)
	return resp, err
}

// SprintProgress fetches sprint statistics. An empty name lets the server
// infer the current sprint.
func (c *Client) SprintProgress(ctx context.Context, sprintName string) (SprintProgressResponse, error) {
	var resp SprintProgressResponse
	query := url.Values{}
	if strings.TrimSpace(sprintName) != "" {
		query.Set("sprint_name", sprintName)
	}
	err := c.do(ctx, http.MethodGet, "/v1/sprints/progress", query, nil, &resp)
	return resp, err
}

func (c *Client) Burndown(ctx context.Context, sprintName string) (BurndownResponse, error) {
	var resp BurndownResponse
	err := c.do(ctx, http.MethodGet, "/v1/sprints/"+url.PathEscape(sprintName)+"/burndown", nil, nil, &resp)
	return resp, err
}

// Refresh forces the server to refetch the sheet.
func (c *Client) Refresh(ctx context.Context) (RefreshResponse, error) {
	var resp RefreshResponse
	err := c.do(ctx, http.MethodPost, "/v1/admin/refresh", nil, nil, &resp)
	return resp, err
}

func (c *Client) Snapshots(ctx context.Context, limit int) (SnapshotListResponse, error) {
	var resp SnapshotListResponse
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	err := c.do(ctx, http.MethodGet, "/v1/admin/snapshots", query, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
