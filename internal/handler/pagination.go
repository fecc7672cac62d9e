package handler

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit keeps a workspace thread page small enough to render
	// quickly on the visitor side.
	DefaultLimit = 50
	MaxLimit     = 100
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset from the query string. Anything
// missing, malformed, or out of range falls back to the defaults rather
// than erroring; pagination inputs are never worth a 400.
func ParsePagination(r *http.Request) PaginationParams {
	q := r.URL.Query()

	p := PaginationParams{Limit: DefaultLimit}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= MaxLimit {
		p.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		p.Offset = offset
	}
	return p
}
