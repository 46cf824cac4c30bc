package util

// ListFilter contains common filtering/pagination options for list endpoints
type ListFilter struct {
	// Filters parsed from query parameter
	Filters []QueryFilter
	// Pagination
	Page    int
	PerPage int
}

// Offset returns the number of rows to skip for the current page
func (f ListFilter) Offset() int {
	if f.Page <= 1 || f.PerPage <= 0 {
		return 0
	}
	page := min(f.Page, MaxPage(f.PerPage))
	return (page - 1) * f.PerPage
}
