package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a normalized page request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes where a page sits in the full result
type Meta struct {
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Page is one page of list results. An empty result is a valid page with no items.
type Page[T any] struct {
	Data []T   `json:"data"`
	Meta *Meta `json:"meta"`
}

// FromQuery normalizes raw page/limit values: page starts at 1, limit falls back to
// DefaultLimit and is capped at MaxLimit
func FromQuery(page, limit int) *Params {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return &Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// MetaFor computes page metadata for total matching rows
func MetaFor(params *Params, total int64) *Meta {
	pages := int((total + int64(params.Limit) - 1) / int64(params.Limit))
	return &Meta{
		Total:       total,
		TotalPages:  pages,
		Page:        params.Page,
		Limit:       params.Limit,
		HasNextPage: params.Page < pages,
		HasPrevPage: params.Page > 1,
	}
}

// NewPage wraps items with metadata. A nil slice is returned as an empty one.
func NewPage[T any](items []T, params *Params, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Data: items, Meta: MetaFor(params, total)}
}

// Map converts every item of a slice, typically a model to its response DTO
func Map[S, T any](items []S, convert func(S) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}
