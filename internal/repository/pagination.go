package repository

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// pageWindow normalises page parameters into LIMIT and OFFSET values.
func pageWindow(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return size, (page - 1) * size
}
