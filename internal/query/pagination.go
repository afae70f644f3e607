package query

import "sheetdash/internal/table"

// Pagination describes the window returned by Paginate.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

// TotalPages is ceil(records/pageSize), and 0 when there are no records.
func TotalPages(records, pageSize int) int {
	if records <= 0 || pageSize <= 0 {
		return 0
	}
	return (records-1)/pageSize + 1
}

// Paginate slices rows to the requested 1-based page. A page past the end
// yields an empty slice.
func Paginate(rows []table.Row, page, pageSize int) ([]table.Row, Pagination) {
	total := len(rows)
	pages := TotalPages(total, pageSize)
	info := Pagination{
		CurrentPage:  page,
		PageSize:     pageSize,
		TotalPages:   pages,
		TotalRecords: total,
		HasNext:      page < pages,
		HasPrev:      page > 1,
	}
	// Checked before multiplying so huge page numbers cannot overflow.
	if page < 1 || pageSize < 1 || page > pages {
		return []table.Row{}, info
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	return rows[start:end], info
}
