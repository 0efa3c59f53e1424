package pagination

import "errors"

var ErrInvalidPagination = errors.New("invalid_pagination")

// Pagination is the offset/limit window bound from query parameters.
// A nil field falls back to the caller's default.
type Pagination struct {
	Limit  *int `form:"limit"`
	Offset *int `form:"offset"`
}

// Window resolves the effective limit and offset. A limit of zero means no
// limit.
func (p Pagination) Window(defaultLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if p.Limit != nil {
		limit = *p.Limit
	}
	if p.Offset != nil {
		offset = *p.Offset
	}
	if limit < 0 || offset < 0 {
		return 0, 0, ErrInvalidPagination
	}
	return limit, offset, nil
}
