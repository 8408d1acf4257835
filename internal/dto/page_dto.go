package dto

// SortFields are the columns a listing may be ordered by. Order is always
// descending.
var SortFields = []string{"id", "created_at", "updated_at"}

// PageQuery is the common pagination input for invoice listings.
type PageQuery struct {
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=100"`
	Sort  string `form:"sort,default=id"  validate:"omitempty,oneof=id created_at updated_at"`
}

// Offset is the number of rows skipped before the requested page.
func (q PageQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// SearchQuery filters invoices by owner name or invoice id.
type SearchQuery struct {
	PageQuery
	Term      string `form:"q"          validate:"max=100"`
	InvoiceID *uint  `form:"invoice_id" validate:"omitempty,min=1"`
}

type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// NewPage computes the page count from total and limit.
func NewPage[T any](data []T, total int64, q PageQuery) Page[T] {
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, Page: q.Page, Limit: q.Limit, Pages: pages}
}
