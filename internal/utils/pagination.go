// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Page is one slice of an in-memory list.
type Page[T any] struct {
	Items      []T
	Total      int
	TotalPages int
	HasNext    bool
}

// Paginate returns the 1-based page of items. Pages past the end are empty;
// page and size below 1 are treated as 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	total := len(items)
	p := Page[T]{Total: total, TotalPages: (total + size - 1) / size, Items: []T{}}
	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Items = items[start:end]
	p.HasNext = end < total
	return p
}
