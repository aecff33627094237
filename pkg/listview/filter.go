// Package listview derives the visible part of an in-memory collection:
// free-text search, category match and fixed-size pages.
package listview

import "strings"

// Filter keeps items whose designated fields contain Term (case-insensitive)
// and whose category equals Category. Empty Term or Category match everything.
type Filter[T any] struct {
	Term       string
	Fields     func(T) []string
	Category   string
	CategoryOf func(T) string
}

func (f Filter[T]) Match(item T) bool {
	return f.matchTerm(item) && f.matchCategory(item)
}

func (f Filter[T]) matchTerm(item T) bool {
	if f.Term == "" || f.Fields == nil {
		return true
	}
	term := strings.ToLower(f.Term)
	for _, field := range f.Fields(item) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func (f Filter[T]) matchCategory(item T) bool {
	if f.Category == "" || f.CategoryOf == nil {
		return true
	}
	return f.CategoryOf(item) == f.Category
}

// Apply returns a new slice in the original order; items is left untouched.
func (f Filter[T]) Apply(items []T) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			result = append(result, item)
		}
	}
	return result
}

// Active reports whether the filter narrows anything.
func (f Filter[T]) Active() bool {
	return f.Term != "" || f.Category != ""
}
