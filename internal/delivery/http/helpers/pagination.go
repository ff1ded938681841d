package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"compassevent/internal/domain"
)

// MaxLimit is the largest page size a client may request.
const MaxLimit = 100

// ParsePagination reads page and limit from the request query string.
// Missing values stay zero so the service applies its defaults; non-integer
// values and a limit above MaxLimit are rejected with domain.ErrInvalidInput.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	var p domain.PaginationParams
	q := r.URL.Query()
	if s := q.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return p, fmt.Errorf("%w: page must be a positive integer", domain.ErrInvalidInput)
		}
		p.Page = v
	}
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return p, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidInput)
		}
		if v > MaxLimit {
			return p, fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidInput, MaxLimit)
		}
		p.Limit = v
	}
	return p, nil
}
