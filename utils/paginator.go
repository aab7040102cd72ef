package utils

import "strconv"

// PageSize is the fixed number of items per listing page.
const PageSize = 10

// Page is one fixed-size window over an ordered result set, together
// with the positional metadata a client needs to render pagination
// controls. Handlers expose only the page, never a paginator aggregate.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	TotalItems int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate slices items into the requested page. The page parameter
// comes straight from the query string: anything non-numeric, zero or
// negative falls back to page 1. A numeric page past the end yields an
// empty page rather than an error.
func Paginate[T any](items []T, pageParam string) Page[T] {
	page := 1
	if n, err := strconv.Atoi(pageParam); err == nil && n > 0 {
		page = n
	}
	return PageAt(items, page)
}

// PageAt slices items into page number n (1-based), clipping the window
// to the bounds of the set.
func PageAt[T any](items []T, n int) Page[T] {
	if n < 1 {
		n = 1
	}
	total := len(items)
	totalPages := (total + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	start := (n - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	// Copy so callers cannot mutate the backing result set through the page.
	window := make([]T, end-start)
	copy(window, items[start:end])

	return Page[T]{
		Items:      window,
		Number:     n,
		Size:       PageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    n < totalPages,
		HasPrev:    n > 1,
	}
}
