package listview

import "strconv"

type Page[T any] struct {
	Items      []T
	Current    int
	TotalPages int
	PageSize   int
	Total      int
}

// Paginate clamps requested into [1, max(totalPages, 1)] and slices items.
func Paginate[T any](items []T, pageSize, requested int) Page[T] {
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	current := clamp(requested, 1, lastPage(totalPages))
	start := (current - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}
	return Page[T]{
		Items:      items[start:end],
		Current:    current,
		TotalPages: totalPages,
		PageSize:   pageSize,
		Total:      total,
	}
}

func (p Page[T]) HasPrev() bool { return p.Current > 1 }

func (p Page[T]) HasNext() bool { return p.Current < p.TotalPages }

func (p Page[T]) Prev() int { return clamp(p.Current-1, 1, lastPage(p.TotalPages)) }

func (p Page[T]) Next() int { return clamp(p.Current+1, 1, lastPage(p.TotalPages)) }

// Show is false for an empty collection so the controls never read "page 1 of 0".
func (p Page[T]) Show() bool { return p.TotalPages > 0 }

// ParsePage reads a 1-based page number; anything unparsable is page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func lastPage(totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	return totalPages
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
