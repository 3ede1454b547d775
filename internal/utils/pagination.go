package utils

// Pagination math shared by every list endpoint.  per_page is clamped to
// [1,100] before any derived value is computed, so a request for 10000 rows
// costs the same as a request for 100.

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ClampPerPage bounds per_page to [1,MaxPerPage].
func ClampPerPage(perPage int64) int64 {
	if perPage < 1 {
		return 1
	}
	if perPage > MaxPerPage {
		return MaxPerPage
	}
	return perPage
}

// Offset returns the row offset for a page: (max(page,1)-1) * clamped per_page.
func Offset(page, perPage int64) int64 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * ClampPerPage(perPage)
}

// PaginationMeta is serialized alongside list payloads.
type PaginationMeta struct {
	Page       int64 `json:"page"`
	PerPage    int64 `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// NewPaginationMeta computes total_pages = ceil(totalItems / clamped per_page).
func NewPaginationMeta(page, perPage, totalItems int64) PaginationMeta {
	if page < 1 {
		page = 1
	}
	pp := ClampPerPage(perPage)
	return PaginationMeta{
		Page:       page,
		PerPage:    pp,
		TotalItems: totalItems,
		TotalPages: (totalItems + pp - 1) / pp,
	}
}
