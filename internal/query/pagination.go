package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pagination defaults and bounds
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params is a 1-based page request as bound from the query string
type Params struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Normalize fills defaults and clamps the limit
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	p.Limit = Take(p.Limit)
	return p
}

// Offset returns the rows to skip for a 1-based page. It is never negative.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	return (page - 1) * limit
}

// Take clamps the page size to MaxLimit
func Take(limit int) int {
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Page is the envelope every list response is wrapped in
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// NewPage builds the envelope and its navigation metadata
func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// MapPage converts the rows of a page, keeping its metadata
func MapPage[S, T any](p Page[S], fn func(S) T) Page[T] {
	data := make([]T, len(p.Data))
	for i, item := range p.Data {
		data[i] = fn(item)
	}
	return Page[T]{
		Data:       data,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext,
		HasPrev:    p.HasPrev,
	}
}

// Fetch runs the page read and the count read concurrently. Either failure
// cancels the other and is returned.
func Fetch[T any](
	ctx context.Context,
	list func(ctx context.Context) ([]T, error),
	count func(ctx context.Context) (int64, error),
) ([]T, int64, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		rows  []T
		total int64
	)
	g.Go(func() error {
		var err error
		rows, err = list(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
