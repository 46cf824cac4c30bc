package util

import (
	"math"
	"strconv"
)

// PageParams parses and clamps page/limit query values.
// Non-numeric or non-positive page becomes 1, non-numeric or non-positive
// limit becomes defaultSize, and limit is capped at maxSize. page is capped
// so that (page-1)*limit cannot overflow; such a page is past any real data
// and lists nothing.
func PageParams(pageStr, limitStr string, defaultSize, maxSize int) (page, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultSize
	}
	if maxSize > 0 && limit > maxSize {
		limit = maxSize
	}

	if page > MaxPage(limit) {
		page = MaxPage(limit)
	}

	return page, limit
}

// TotalPages is ceil(total / perPage)
func TotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// MaxPage is the largest page whose offset fits in an int
func MaxPage(perPage int) int {
	if perPage <= 0 {
		return math.MaxInt
	}
	return math.MaxInt/perPage + 1
}
