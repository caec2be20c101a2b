package core

const (
	DefaultPageWindow     = 5 // should be odd
	DefaultCoursesPerPage = 12
)

// PageWindow is a bounded page of a listing and the page numbers to display as navigation links.
type PageWindow struct {
	TotalItems    int   `json:"total_items"`
	PageSize      int   `json:"page_size"`
	RequestedPage int   `json:"-"`
	CurrentPage   int   `json:"current_page"`
	TotalPages    int   `json:"total_pages"`
	Pages         []int `json:"pages"`
	ShowFirst     bool  `json:"show_first"`
	ShowLast      bool  `json:"show_last"`
	ShowControls  bool  `json:"show_controls"`
}

// ComputeWindow returns the page window of a listing of `totalItems` items split in pages of `pageSize`.
// `requestedPage` is clamped to the available pages, it never fails.
// Pages is a contiguous ascending run of at most `windowSize` page numbers, centered on the current page
// whenever possible. An even `windowSize` biases the window low.
func ComputeWindow(totalItems, pageSize, requestedPage, windowSize int) PageWindow {
	if totalItems < 0 {
		totalItems = 0
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if windowSize < 1 {
		windowSize = 1
	}

	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	current := requestedPage
	if current < 1 {
		current = 1
	} else if current > totalPages {
		current = totalPages
	}

	half := windowSize / 2
	var first, last int
	switch {
	case totalPages <= windowSize:
		first, last = 1, totalPages
	case totalPages-current < half:
		first, last = totalPages-windowSize+1, totalPages
	case current-half <= 0:
		first, last = 1, windowSize
	default:
		first, last = current-half, current+half
	}
	// an even window would overflow by one on the right
	if last-first+1 > windowSize {
		last = first + windowSize - 1
	}

	pages := make([]int, 0, last-first+1)
	for p := first; p <= last; p++ {
		pages = append(pages, p)
	}

	return PageWindow{
		TotalItems:    totalItems,
		PageSize:      pageSize,
		RequestedPage: requestedPage,
		CurrentPage:   current,
		TotalPages:    totalPages,
		Pages:         pages,
		ShowFirst:     pages[0] > 1,
		ShowLast:      pages[len(pages)-1] < totalPages,
		ShowControls:  totalPages > 1,
	}
}

// Offset is the index of the first item of the current page.
func (pw PageWindow) Offset() int { return (pw.CurrentPage - 1) * pw.PageSize }

func (pw PageWindow) Limit() int { return pw.PageSize }

func (pw PageWindow) HasPrevious() bool { return pw.CurrentPage > 1 }

func (pw PageWindow) HasNext() bool { return pw.CurrentPage < pw.TotalPages }

func (pw PageWindow) PreviousPage() int {
	if pw.HasPrevious() {
		return pw.CurrentPage - 1
	}
	return pw.CurrentPage
}

func (pw PageWindow) NextPage() int {
	if pw.HasNext() {
		return pw.CurrentPage + 1
	}
	return pw.CurrentPage
}
