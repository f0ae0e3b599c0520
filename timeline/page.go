package timeline

import (
	"math"

	"hoaxify/config"
)

// PageRequest is a zero-based page number and a page size
type PageRequest struct {
	Number int
	Size   int
}

// Normalize clamps the request into the configured bounds. Sizes below one
// fall back to the default, sizes above the maximum are cut to the maximum.
// The page number is capped so that Offset cannot overflow.
func (p PageRequest) Normalize(bounds config.Paging) PageRequest {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size < 1 {
		p.Size = bounds.DefaultSize
	}
	if p.Size > bounds.MaxSize {
		p.Size = bounds.MaxSize
	}
	if p.Size > 0 && p.Number > math.MaxInt/p.Size {
		p.Number = math.MaxInt / p.Size
	}
	return p
}

func (p PageRequest) Offset() int {
	return p.Number * p.Size
}

type Page[T any] struct {
	Content          []T   `json:"content"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
}

func NewPage[T any](content []T, request PageRequest, total int64) *Page[T] {
	totalPages := 0
	if request.Size > 0 {
		totalPages = int((total + int64(request.Size) - 1) / int64(request.Size))
	}
	return &Page[T]{
		Content:          content,
		Number:           request.Number,
		Size:             request.Size,
		TotalElements:    total,
		TotalPages:       totalPages,
		NumberOfElements: len(content),
		First:            request.Number == 0,
		Last:             request.Number >= totalPages-1,
	}
}

// MapPage converts the content of a page keeping its metadata
func MapPage[T, R any](page *Page[T], fn func(T) R) *Page[R] {
	content := make([]R, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, fn(item))
	}
	return &Page[R]{
		Content:          content,
		Number:           page.Number,
		Size:             page.Size,
		TotalElements:    page.TotalElements,
		TotalPages:       page.TotalPages,
		NumberOfElements: page.NumberOfElements,
		First:            page.First,
		Last:             page.Last,
	}
}
