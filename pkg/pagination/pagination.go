package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// Params holds page/limit values read from a query string.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// New normalizes page and limit: page < 1 becomes 1, limit < 1 becomes
// DefaultLimit and limit > MaxLimit is capped.
func New(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// FromRequest reads `page` and `limit` (or `per_page`) from r. Malformed
// values fall back to defaults.
func FromRequest(r *http.Request) Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	rawLimit := q.Get("limit")
	if rawLimit == "" {
		rawLimit = q.Get("per_page")
	}
	limit, _ := strconv.Atoi(rawLimit)
	return New(page, limit)
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// HasMore reports whether rows exist beyond page.
func HasMore(total, page, limit int) bool {
	return total > page*limit
}

// Result is a page of items plus the numbers a client needs to render
// page links and a "load more" button.
type Result[T any] struct {
	Data       []T  `json:"data"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewResult builds a Result. A nil slice is rendered as [].
func NewResult[T any](data []T, total int, p Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
		HasMore:    HasMore(total, p.Page, p.Limit),
	}
}
