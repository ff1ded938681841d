package domain

import (
	"fmt"
	"math"
)

// Pagination defaults shared by every list operation.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// PaginationParams holds 1-based offset pagination parameters for list queries.
type PaginationParams struct {
	Page  int
	Limit int
}

// WithDefaults fills zero values with DefaultPage and DefaultLimit.
func (p PaginationParams) WithDefaults() PaginationParams {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// Validate returns ErrInvalidInput when page or limit is below 1.
func (p PaginationParams) Validate() error {
	if p.Page < 1 || p.Limit < 1 {
		return fmt.Errorf("%w: invalid page or limit", ErrInvalidInput)
	}
	return nil
}

// Offset returns the item offset for the current page (0-based).
// Formula: (Page - 1) * Limit, saturating at math.MaxInt.
func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Page is one page of a filtered list. Total is the size of the filtered set
// before slicing.
type Page[T any] struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Data  []T `json:"data"`
}

// Paginate slices items according to p. Data is never nil.
func Paginate[T any](items []T, p PaginationParams) *Page[T] {
	start := p.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := len(items)
	if p.Limit < end-start {
		end = start + max(p.Limit, 0)
	}
	data := make([]T, 0, end-start)
	data = append(data, items[start:end]...)
	return &Page[T]{
		Total: len(items),
		Page:  p.Page,
		Limit: p.Limit,
		Data:  data,
	}
}
