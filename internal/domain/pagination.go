package domain

// Sort directions accepted by SortOrder.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// SortOrder orders results by one column.
type SortOrder struct {
	Column    string
	Direction string
}

// PaginationParams holds offset-based pagination parameters for list queries.
// PageSize 0 means unbounded. Without Sort the result order is storage-defined.
type PaginationParams struct {
	Page     int
	PageSize int
	Sort     []SortOrder
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
