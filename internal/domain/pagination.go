package domain

// PaginationParams holds offset-based pagination parameters for list queries.
// A PageSize of zero or less means the whole result set.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Paged reports whether the query should be limited to a single page.
func (p PaginationParams) Paged() bool {
	return p.PageSize > 0
}

// Offset returns the number of records to skip for the current page.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || !p.Paged() {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
