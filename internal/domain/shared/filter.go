package shared

// DefaultPageSize is used when a list request does not ask for one
const DefaultPageSize = 20

// Filter carries the paging, ordering and free-text search of a list query.
// OrderBy is a client-facing field name; repositories map it to a column
// through their own whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter is the first page at DefaultPageSize
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize}
}

// NewFilter fills in defaults for non-positive paging values
func NewFilter(page, pageSize int, orderBy, orderDir, search string) Filter {
	f := Filter{Page: max(page, 1), PageSize: pageSize, OrderBy: orderBy, OrderDir: orderDir, Search: search}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	return f
}

// Offset is the number of rows before the filter's page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// TotalPages is the number of pages needed for total rows
func (f Filter) TotalPages(total int64) int {
	if f.PageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
}
