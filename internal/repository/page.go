package repository

// ListQuery carries the pagination parameters shared by every list
// operation. Zero values are normalised to limit 10, page 1.
type ListQuery struct {
	Limit int
	Page  int
}

// Normalize returns a copy with defaults applied. Limit and Page must
// both be positive; anything else falls back to the defaults.
func (q ListQuery) Normalize() ListQuery {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

// Offset computes the number of rows to skip for the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Page is the envelope returned by every paginated list operation.
// CurrentPage always echoes the requested page, even when it lies
// beyond TotalPages; in that case Data is empty and IsLastPage is true.
type Page[T any] struct {
	Data        []T   `json:"data"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	IsFirstPage bool  `json:"isFirstPage"`
	IsLastPage  bool  `json:"isLastPage"`
}

// NewPage builds the envelope from a fetched slice, the total row count
// matching the same predicate, and the normalised query. TotalPages is
// ceil(total/limit), which is 0 when no rows match, so an empty result
// still reports IsLastPage (page >= 0).
func NewPage[T any](data []T, total int64, q ListQuery) Page[T] {
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data:        data,
		TotalItems:  total,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		IsFirstPage: q.Page == 1,
		IsLastPage:  q.Page >= totalPages,
	}
}
