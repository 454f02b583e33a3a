package sqlh

import "math"

// Limit meaning "everything on one page".
const Unlimited = math.MaxInt32

/*
Implemented by request types carrying optional paging parameters, typically
decoded from query strings.
*/
type PaginatedRequest interface {
	PageNumber() (int, bool)
	PageSize() (int, bool)
}

/*
Page arithmetic for `LIMIT`/`OFFSET` queries. Pages are 1-based; zero or
negative pages are treated as the first page. `Limit == Unlimited` means a
single page containing all items.
*/
type Pagination struct {
	Page    int `json:"page"`
	NbItems int `json:"nbItems"`
	Limit   int `json:"limit"`
}

func NewPagination(page, nbItems, limit int) Pagination {
	return Pagination{Page: page, NbItems: nbItems, Limit: limit}
}

/*
Builds a pagination from a request. A missing page means the first page; a
missing or non-positive page size falls back to `defaultLimit`.
*/
func PaginationFor(req PaginatedRequest, nbItems, defaultLimit int) Pagination {
	out := Pagination{Page: 1, NbItems: nbItems, Limit: defaultLimit}
	if req == nil {
		return out
	}

	page, ok := req.PageNumber()
	if ok {
		out.Page = page
	}

	size, ok := req.PageSize()
	if ok && size > 0 {
		out.Limit = size
	}
	return out
}

func (self Pagination) IsUnlimited() bool { return self.Limit == Unlimited }

// Offset of the first item of the given page.
func (self Pagination) OffsetForPage(page int) int {
	if self.IsUnlimited() || self.Limit <= 0 {
		return 0
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * self.Limit
}

// Offset of the first item of the current page.
func (self Pagination) Offset() int { return self.OffsetForPage(self.Page) }

// Number of pages needed for all items. Zero items make zero pages, except
// when unlimited, which is always one page.
func (self Pagination) PageCount() int {
	if self.IsUnlimited() {
		return 1
	}
	if self.Limit <= 0 || self.NbItems <= 0 {
		return 0
	}
	return (self.NbItems + self.Limit - 1) / self.Limit
}
