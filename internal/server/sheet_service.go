package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sheetdash/internal/analytics"
	"sheetdash/internal/api"
	"sheetdash/internal/dataset"
	"sheetdash/internal/query"
	"sheetdash/internal/table"
)

const (
	fallbackPageSize    = 100
	fallbackMaxPageSize = 1000
	progressMessage     = "Sprint progress retrieved successfully"
)

// SheetService exposes the read operations over the cached sheet.
type SheetService struct {
	cache           *dataset.Cache
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// CacheState describes the current cache entry.
type CacheState struct {
	DocumentID string
	SheetName  string
	TTL        time.Duration
	FetchedAt  time.Time
	Loaded     bool
}

// NewSheetService constructs a SheetService.
func NewSheetService(cache *dataset.Cache, defaultPageSize, maxPageSize int, now func() time.Time) *SheetService {
	if maxPageSize <= 0 {
		maxPageSize = fallbackMaxPageSize
	}
	if defaultPageSize <= 0 {
		defaultPageSize = fallbackPageSize
	}
	if defaultPageSize > maxPageSize {
		defaultPageSize = maxPageSize
	}
	if now == nil {
		now = time.Now
	}
	return &SheetService{
		cache:           cache,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		now:             now,
	}
}

// DefaultPageSize is the page size used when a request omits one.
func (s *SheetService) DefaultPageSize() int { return s.defaultPageSize }

// MaxPageSize bounds the page size a request may ask for.
func (s *SheetService) MaxPageSize() int { return s.maxPageSize }

// CacheState reports the cache configuration and the current entry.
func (s *SheetService) CacheState() CacheState {
	if s.cache == nil {
		return CacheState{}
	}
	fetchedAt, ok := s.cache.FetchedAt()
	return CacheState{
		DocumentID: s.cache.DocumentID(),
		SheetName:  s.cache.SheetName(),
		TTL:        s.cache.TTL(),
		FetchedAt:  fetchedAt,
		Loaded:     ok,
	}
}

func (s *SheetService) load(ctx context.Context, force bool) (*table.Table, error) {
	if s.cache == nil {
		return nil, internalError(fmt.Errorf("dataset cache is not configured"))
	}
	t, err := s.cache.Get(ctx, force)
	if err != nil {
		var ingestErr *dataset.IngestionError
		if errors.As(err, &ingestErr) {
			return nil, sourceUnavailable(err)
		}
		return nil, internalError(err)
	}
	return t, nil
}

// Summary returns row and column counts plus per-column kinds.
func (s *SheetService) Summary(ctx context.Context) (api.SummaryResponse, error) {
	t, err := s.load(ctx, false)
	if err != nil {
		return api.SummaryResponse{}, err
	}
	return analytics.BuildSummary(t, s.cache.DocumentID(), s.cache.SheetName(), s.now()), nil
}

// PaginatedData filters, sorts and pages the table and reports the applied
// and available filters alongside the page.
func (s *SheetService) PaginatedData(ctx context.Context, params query.Params) (api.DataResponse, error) {
	if params.PageSize > s.maxPageSize {
		return api.DataResponse{}, badRequestCode(fmt.Errorf("page_size must be <= %d", s.maxPageSize), ErrCodeInvalidPageSize)
	}
	t, err := s.load(ctx, false)
	if err != nil {
		return api.DataResponse{}, err
	}
	result, err := query.Run(t, params)
	if err != nil {
		return api.DataResponse{}, badRequestCode(err, ErrCodeInvalidPage)
	}
	filters, err := s.AppliedAndAvailableFilters(ctx, params.Status, params.Priority)
	if err != nil {
		return api.DataResponse{}, err
	}
	return api.DataResponse{
		Data:       query.RenderRows(t, result.Rows),
		Pagination: result.Pagination,
		Filters:    filters,
	}, nil
}

// FilterOptions lists the distinct filterable values.
func (s *SheetService) FilterOptions(ctx context.Context) (api.FilterOptionsResponse, error) {
	t, err := s.load(ctx, false)
	if err != nil {
		return api.FilterOptionsResponse{}, err
	}
	return analytics.BuildFilterOptions(t), nil
}

// AppliedAndAvailableFilters names the applied filters and echoes the
// available values.
func (s *SheetService) AppliedAndAvailableFilters(ctx context.Context, status, priority string) (analytics.FilterInfo, error) {
	t, err := s.load(ctx, false)
	if err != nil {
		return analytics.FilterInfo{}, err
	}
	return analytics.BuildFilterInfo(t, status, priority), nil
}

// SprintProgress computes the statistics for one sprint. An empty name
// selects the most recent sprint.
func (s *SheetService) SprintProgress(ctx context.Context, sprintName string) (api.SprintProgressResponse, error) {
	t, err := s.load(ctx, false)
	if err != nil {
		return api.SprintProgressResponse{}, err
	}
	return api.SprintProgressResponse{
		Success: true,
		Data:    analytics.Progress(t, strings.TrimSpace(sprintName), s.now()),
		Message: progressMessage,
	}, nil
}

// Sprints lists every sprint and the inferred current one.
func (s *SheetService) Sprints(ctx context.Context) (api.SprintListResponse, error) {
	t, err := s.load(ctx, false)
	if err != nil {
		return api.SprintListResponse{}, err
	}
	return analytics.ListSprints(t), nil
}

// Burndown builds the burndown chart for a sprint.
func (s *SheetService) Burndown(ctx context.Context, sprintName string) (api.BurndownResponse, error) {
	sprintName = strings.TrimSpace(sprintName)
	if sprintName == "" {
		return api.BurndownResponse{}, badRequestCode(fmt.Errorf("sprint name is required"), ErrCodeInvalidSprint)
	}
	t, err := s.load(ctx, false)
	if err != nil {
		return api.BurndownResponse{}, err
	}
	burndown, err := analytics.BuildBurndown(t, sprintName, s.now())
	if errors.Is(err, analytics.ErrSprintNotFound) {
		return api.BurndownResponse{}, notFoundCode(fmt.Errorf("sprint %q not found", sprintName), ErrCodeSprintNotFound)
	}
	if err != nil {
		return api.BurndownResponse{}, internalError(err)
	}
	return burndown, nil
}

// Refresh refetches the sheet regardless of cache age.
func (s *SheetService) Refresh(ctx context.Context) (api.RefreshResponse, error) {
	t, err := s.load(ctx, true)
	if err != nil {
		return api.RefreshResponse{}, err
	}
	fetchedAt, _ := s.cache.FetchedAt()
	return api.RefreshResponse{
		Rows:      t.Len(),
		Columns:   len(t.Columns),
		FetchedAt: fetchedAt,
	}, nil
}
