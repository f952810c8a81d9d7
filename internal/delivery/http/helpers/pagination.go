package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"conferencegateway/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page, page_size and sort from the request query string.
// Invalid or missing page values fall back to defaults; page_size is clamped to
// MaxPageSize. Each sort parameter has the form column[,asc|desc]; column names
// are checked later by the repository.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	page := DefaultPage
	if s := q.Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			page = v
		}
	}
	pageSize := DefaultPageSize
	if s := q.Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			pageSize = min(v, MaxPageSize)
		}
	}
	var sort []domain.SortOrder
	for _, s := range q["sort"] {
		col, dir, _ := strings.Cut(s, ",")
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		sort = append(sort, domain.SortOrder{Column: col, Direction: strings.TrimSpace(dir)})
	}
	return domain.PaginationParams{Page: page, PageSize: pageSize, Sort: sort}
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size, and total count.
// TotalPages is ceiling(total / pageSize); if pageSize is 0, TotalPages is 0.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	var totalPages int64
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
