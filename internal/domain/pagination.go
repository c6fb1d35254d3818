package domain

import (
	"math"
	"strings"
)

// DefaultListLimit is the page size used when a resource type declares none.
const DefaultListLimit = 20

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery holds the raw list parameters before clamping.
type ListQuery struct {
	OrderBy string
	Order   string
	Page    int
	Limit   int
}

// PaginationResult is the bounded view of a filtered, ordered result set.
type PaginationResult struct {
	Limit        int   `json:"limit"`
	TotalMatches int   `json:"maxResults"`
	Items        []any `json:"results"`
	TotalPages   int   `json:"pages"`
	CurrentPage  int   `json:"currentPage"`
}

// Window describes which slice of a result set a page covers.
type Window struct {
	Offset     int
	Limit      int
	Page       int
	TotalPages int
}

// ClampLimit replaces a non-positive or oversized limit with max.
func ClampLimit(limit, max int) int {
	if max <= 0 {
		max = DefaultListLimit
	}
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

// ClampPage replaces a non-positive page with 1.
func ClampPage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Paginate computes the window for page/limit over total matches. Pages too
// large to address get an offset of math.MaxInt, past any result set.
func Paginate(total, page, limit, max int) Window {
	limit = ClampLimit(limit, max)
	page = ClampPage(page)
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}
	return Window{
		Offset:     offset,
		Limit:      limit,
		Page:       page,
		TotalPages: pages,
	}
}

// SliceWindow returns the part of items covered by w. Out-of-range pages
// yield an empty slice.
func SliceWindow[T any](items []T, w Window) []T {
	if w.Offset < 0 || w.Limit <= 0 || w.Offset >= len(items) {
		return []T{}
	}
	end := w.Offset + w.Limit
	if end > len(items) || end < w.Offset {
		end = len(items)
	}
	return items[w.Offset:end]
}

// NormalizeDirection returns the lower-cased direction and whether it is
// one of asc/desc.
func NormalizeDirection(order string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(order))
	return d, d == SortAsc || d == SortDesc
}
