package resource

import "strings"

// Match reports whether query is a case-insensitive substring of the fields
// joined together. An empty query matches everything.
func Match(query string, fields []string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), q)
}

// Filter keeps the items whose search fields match query, preserving order.
func Filter[T any](items []T, query string, fields func(*T) []string) []T {
	if strings.TrimSpace(query) == "" || fields == nil {
		return items
	}
	out := make([]T, 0, len(items))
	for i := range items {
		if Match(query, fields(&items[i])) {
			out = append(out, items[i])
		}
	}
	return out
}
