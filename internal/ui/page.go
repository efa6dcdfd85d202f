package ui

// MaxPages is ceil(count/perPage), never less than one.
func MaxPages(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 1
	}
	return max(1, (count+perPage-1)/perPage)
}

// ResolvePage wraps page into [0, max): past the end goes to the first
// page, before the start goes to the last one.
func ResolvePage(page, max int) int {
	if max < 1 {
		max = 1
	}
	switch {
	case page >= max:
		return 0
	case page < 0:
		return max - 1
	default:
		return page
	}
}

// PageBounds returns the [start, end) item range of page.
func PageBounds(page, perPage, count int) (start, end int) {
	start = page * perPage
	end = start + perPage
	start = min(max(start, 0), count)
	end = min(max(end, 0), count)
	return start, end
}
