// internal/utils/pagination.go
package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationParams are the page, limit and search query parameters shared by list endpoints.
type PaginationParams struct {
	Page   int
	Limit  int
	Search string
}

// PageInfo is rendered under meta.pagination.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type PaginationResult struct {
	Data       interface{}
	Pagination PageInfo
}

// GetPaginationParams reads the query; out-of-range values fall back to the first page of the
// default size rather than failing the request.
func GetPaginationParams(c *gin.Context) PaginationParams {
	p := PaginationParams{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", defaultPageSize),
		Search: c.Query("search"),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 || p.Limit > maxPageSize {
		p.Limit = defaultPageSize
	}
	return p
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	info := PageInfo{Page: params.Page, Limit: params.Limit, Total: total}
	if params.Limit > 0 {
		info.TotalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return PaginationResult{Data: data, Pagination: info}
}

func (r PaginationResult) writeHeaders(c *gin.Context) {
	c.Header("X-Total-Count", strconv.FormatInt(r.Pagination.Total, 10))
	c.Header("X-Total-Pages", strconv.Itoa(r.Pagination.TotalPages))
}
