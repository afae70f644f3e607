package server

import (
	"fmt"
	"net/http"
	"strconv"

	"sheetdash/internal/query"
)

func parseDataQuery(r *http.Request, defaultPageSize, maxPageSize int) (query.Params, error) {
	page, err := queryPositiveInt(r, "page", 1, ErrCodeInvalidPage)
	if err != nil {
		return query.Params{}, err
	}
	pageSize, err := queryPositiveInt(r, "page_size", defaultPageSize, ErrCodeInvalidPageSize)
	if err != nil {
		return query.Params{}, err
	}
	if pageSize > maxPageSize {
		return query.Params{}, badRequestCode(fmt.Errorf("page_size must be <= %d", maxPageSize), ErrCodeInvalidPageSize)
	}

	order, ok := query.ParseSortOrder(r.URL.Query().Get("sort_order"))
	if !ok {
		return query.Params{}, badRequestCode(fmt.Errorf("sort_order must be asc or desc"), ErrCodeInvalidSortOrder)
	}

	sortBy := queryString(r, "sort_by")
	if sortBy == "" {
		sortBy = query.DefaultSortBy
	}

	return query.Params{
		Search:    queryString(r, "search"),
		Status:    queryString(r, "status"),
		Priority:  queryString(r, "priority"),
		SortBy:    sortBy,
		SortOrder: order,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

func queryPositiveInt(r *http.Request, key string, def, code int) (int, error) {
	value := queryString(r, key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badRequestCode(fmt.Errorf("invalid %s", key), code)
	}
	if parsed < 1 {
		return 0, badRequestCode(fmt.Errorf("%s must be >= 1", key), code)
	}
	return parsed, nil
}
