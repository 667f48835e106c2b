// Package pagination slices ordered, countable result sets into pages.
package pagination

import (
	"context"
	"fmt"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Query is an ordered, filtered result set that can be counted without
// materializing it and fetched one window at a time.
type Query[T any] interface {
	Count(ctx context.Context) (int, error)
	Fetch(ctx context.Context, limit, offset int) ([]T, error)
}

// Params holds the requested page
type Params struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Normalize clamps page number and size to at least 1
func (p Params) Normalize() Params {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	return p
}

// Capped limits the page size to MaxPageSize. Request parsing applies it;
// Paginate itself honours any size.
func (p Params) Capped() Params {
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the index of the first item of the page
func (p Params) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// Page is the metadata accompanying a page of results
type Page struct {
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	TotalCount  int `json:"totalCount"`
	TotalPages  int `json:"totalPages"`
}

// NewPage computes page metadata for totalCount items
func NewPage(p Params, totalCount int) Page {
	totalPages := totalCount / p.PageSize
	if totalCount%p.PageSize != 0 {
		totalPages++
	}
	return Page{
		CurrentPage: p.PageNumber,
		PageSize:    p.PageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
	}
}

// PagedList is one page of items plus its metadata
type PagedList[T any] struct {
	Items []T
	Page  Page
}

// Paginate counts the query and fetches the requested window of it.
// A page past the end yields no items and no error.
func Paginate[T any](ctx context.Context, q Query[T], p Params) (*PagedList[T], error) {
	p = p.Normalize()

	total, err := q.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	list := &PagedList[T]{
		Items: []T{},
		Page:  NewPage(p, total),
	}

	// checked before Offset so huge page numbers cannot overflow it
	if p.PageNumber > list.Page.TotalPages {
		return list, nil
	}

	items, err := q.Fetch(ctx, p.PageSize, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if items != nil {
		list.Items = items
	}
	return list, nil
}

// Map projects every item of a page, keeping its metadata
func Map[T, U any](list *PagedList[T], fn func(T) U) *PagedList[U] {
	out := &PagedList[U]{
		Items: make([]U, 0, len(list.Items)),
		Page:  list.Page,
	}
	for _, item := range list.Items {
		out.Items = append(out.Items, fn(item))
	}
	return out
}
