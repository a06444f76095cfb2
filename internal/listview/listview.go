// Package listview filters, sorts and paginates records held in memory the way the
// console list screens show them.
package listview

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is the number of rows per page when none is chosen.
const DefaultPageSize = 10

// PageSizes are the rows-per-page choices offered by the list screens.
var PageSizes = []int{5, 10, 20, 30, 40, 50, 100}

// Compare orders two records; negative means a sorts first.
type Compare[T any] func(a, b T) int

// Spec describes one list request.
type Spec[T any] struct {
	// Query is matched case-insensitively as a substring of any SearchFields value.
	Query        string
	SearchFields []func(T) string
	// Filters must all accept a record for it to be listed.
	Filters []func(T) bool
	Sort    Compare[T]
	Desc    bool
	// Page is 1-based; values below 1 select the first page.
	Page     int
	PageSize int
}

// Page is one slice of the filtered, sorted list.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// Apply runs filter, sort and paginate over items. items is not modified.
func Apply[T any](items []T, spec Spec[T]) Page[T] {
	size := spec.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	matched := make([]T, 0, len(items))
	query := strings.ToLower(strings.TrimSpace(spec.Query))
	for _, item := range items {
		if keep(item, query, spec) {
			matched = append(matched, item)
		}
	}

	if spec.Sort != nil {
		slices.SortStableFunc(matched, func(a, b T) int {
			if spec.Desc {
				return spec.Sort(b, a)
			}
			return spec.Sort(a, b)
		})
	}

	totalPages := (len(matched) + size - 1) / size
	page := spec.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+size, len(matched))

	return Page[T]{
		Items:      matched[start:end],
		Page:       page,
		PageSize:   size,
		Total:      len(matched),
		TotalPages: totalPages,
	}
}

func keep[T any](item T, query string, spec Spec[T]) bool {
	for _, f := range spec.Filters {
		if !f(item) {
			return false
		}
	}
	if query == "" {
		return true
	}
	for _, field := range spec.SearchFields {
		if strings.Contains(strings.ToLower(field(item)), query) {
			return true
		}
	}
	return false
}

// ByString compares the lower-cased values returned by key.
func ByString[T any](key func(T) string) Compare[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// ByNumber compares numeric keys; records whose key reports !ok sort as missing.
func ByNumber[T any, N cmp.Ordered](key func(T) (N, bool), missing N) Compare[T] {
	return func(a, b T) int {
		va, ok := key(a)
		if !ok {
			va = missing
		}
		vb, ok := key(b)
		if !ok {
			vb = missing
		}
		return cmp.Compare(va, vb)
	}
}

// Ellipsis marks a gap in the page numbers returned by Window.
const Ellipsis = 0

// Window returns the page numbers a pager shows around current: up to five consecutive
// pages, plus the first and last page separated by Ellipsis when they are not adjacent.
func Window(current, totalPages int) []int {
	const width = 5
	if totalPages <= 0 {
		return nil
	}
	start := max(1, current-width/2)
	end := min(totalPages, start+width-1)
	if end-start+1 < width {
		start = max(1, end-width+1)
	}

	var pages []int
	if start > 1 {
		pages = append(pages, 1)
		if start > 2 {
			pages = append(pages, Ellipsis)
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < totalPages {
		if end < totalPages-1 {
			pages = append(pages, Ellipsis)
		}
		pages = append(pages, totalPages)
	}
	return pages
}
