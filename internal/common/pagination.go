// File: internal/common/pagination.go
package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Page is the paginated result shape shared by every list endpoint.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}

// NewPage builds a Page. totalPages is ceil(total/limit); items is never nil.
func NewPage[T any](items []T, total int64, page, limit int) Page[T] {
	if items == nil {
		items = []T{}
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{Items: items, Total: total, Page: page, TotalPages: totalPages}
}

// MapPage converts the items of a page while keeping its counters.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{Items: out, Total: p.Total, Page: p.Page, TotalPages: p.TotalPages}
}

// PaginationQuery holds pagination parameters from request query.
type PaginationQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize applies defaults and clamps Limit to maxLimit.
func (pq *PaginationQuery) Normalize(maxLimit int) {
	if maxLimit <= 0 {
		maxLimit = MaxPageSize
	}
	if pq.Page <= 0 {
		pq.Page = DefaultPage
	}
	if pq.Limit <= 0 {
		pq.Limit = DefaultPageSize
	}
	if pq.Limit > maxLimit {
		pq.Limit = maxLimit
	}
}

// Offset calculates the offset for database queries.
func (pq PaginationQuery) Offset() int {
	if pq.Page <= 0 {
		return 0
	}
	return (pq.Page - 1) * pq.Limit
}

// GetPaginationParams extracts pagination parameters from Gin context.
func GetPaginationParams(c *gin.Context, maxLimit int) PaginationQuery {
	var pq PaginationQuery
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		pq.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		pq.Limit = v
	}
	pq.Normalize(maxLimit)
	return pq
}
