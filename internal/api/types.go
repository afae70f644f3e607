package api

import (
	"time"

	"sheetdash/internal/analytics"
	"sheetdash/internal/query"
	"sheetdash/internal/store"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// HealthResponse reports whether the source sheet can be read.
type HealthResponse struct {
	Status          string    `json:"status"`
	SheetConnection string    `json:"sheet_connection"`
	Timestamp       time.Time `json:"timestamp"`
}

// InfoResponse describes the running service and its cache.
type InfoResponse struct {
	Version         string     `json:"version"`
	DocumentID      string     `json:"document_id"`
	SheetName       string     `json:"sheet_name"`
	CacheTTLSeconds float64    `json:"cache_ttl_seconds"`
	CachedAt        *time.Time `json:"cached_at,omitempty"`
	CacheAgeSeconds *float64   `json:"cache_age_seconds,omitempty"`
	ArchiveEnabled  bool       `json:"archive_enabled"`
	SchemaVersion   int        `json:"schema_version,omitempty"`
	Snapshots       int        `json:"snapshots"`
}

// SummaryResponse is the sheet summary.
type SummaryResponse = analytics.Summary

// FilterOptionsResponse lists the filterable values.
type FilterOptionsResponse = analytics.FilterOptions

// DataResponse is one page of rendered rows.
type DataResponse struct {
	Data       []map[string]any     `json:"data"`
	Pagination query.Pagination     `json:"pagination"`
	Filters    analytics.FilterInfo `json:"filters"`
}

// SprintProgressResponse wraps sprint statistics.
type SprintProgressResponse struct {
	Success bool                     `json:"success"`
	Data    analytics.SprintProgress `json:"data"`
	Message string                   `json:"message"`
}

// SprintListResponse enumerates sprints.
type SprintListResponse = analytics.SprintList

// BurndownResponse is the burndown of one sprint.
type BurndownResponse = analytics.Burndown

// RefreshResponse reports the table loaded by a forced refresh.
type RefreshResponse struct {
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	FetchedAt time.Time `json:"fetched_at"`
}

// SnapshotListResponse lists archived exports, newest first.
type SnapshotListResponse struct {
	Enabled   bool             `json:"enabled"`
	Snapshots []store.Snapshot `json:"snapshots"`
}
