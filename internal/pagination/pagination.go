package pagination

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Meta is the pagination block of the response envelope.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Params converts raw page/limit query values into sanitized page, limit and
// the matching SQL offset. Non-numeric or out-of-range values fall back to
// defaults; limit is capped at 100.
func Params(pageStr, limitStr string) (page, limit, offset int) {
	page = defaultPage
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	limit = defaultLimit
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}

// NewMeta wraps a result-set size with page metadata.
func NewMeta(page, limit int, total int64) *Meta {
	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &Meta{
		Page:       page,
		PageSize:   limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
