package repository

// Page carries the 1-indexed page number and page size of a listing
// request. Zero values are normalized to the defaults (page 1, ten
// items).
type Page struct {
	Page  int
	Limit int
}

// bounds returns the LIMIT/OFFSET pair for the page.
func (p Page) bounds() (limit, offset int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = 10
	}
	return limit, (page - 1) * limit
}

// PageCount returns ceil(total/limit) for a listing response, treating
// a non-positive limit as the default page size.
func PageCount(total int64, limit int) int {
	if limit < 1 {
		limit = 10
	}
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
