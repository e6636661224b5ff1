package filter

// Pager slices a filtered/sorted sequence into fixed-size pages. Pages are
// 1-based; page count and showing labels are derived, never stored.
type Pager struct {
	size  int
	page  int
	total int
}

func NewPager(size int) Pager {
	if size <= 0 {
		size = 10
	}
	return Pager{size: size, page: 1}
}

// SetTotal records the length of the current sequence and re-clamps the page.
func (p *Pager) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.SetPage(p.page)
}

// SetPage clamps n to [1, PageCount] so a filtered-away page can never be
// left selected.
func (p *Pager) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	if count := p.PageCount(); n > count {
		n = count
	}
	p.page = n
}

// Reset returns to page 1. Callers invoke this on every filter or sort
// change.
func (p *Pager) Reset() {
	p.page = 1
}

func (p Pager) Page() int     { return p.page }
func (p Pager) PageSize() int { return p.size }
func (p Pager) Total() int    { return p.total }

func (p Pager) PageCount() int {
	if p.total == 0 {
		return 1
	}
	return (p.total + p.size - 1) / p.size
}

// Bounds returns the half-open slice interval [(page-1)*size, page*size)
// clipped to the sequence length.
func (p Pager) Bounds() (int, int) {
	start := (p.page - 1) * p.size
	if start > p.total {
		start = p.total
	}
	end := start + p.size
	if end > p.total {
		end = p.total
	}
	return start, end
}

// Showing returns the 1-based "showing X-Y of N" positions; (0, 0) when the
// sequence is empty.
func (p Pager) Showing() (int, int) {
	if p.total == 0 {
		return 0, 0
	}
	start, end := p.Bounds()
	return start + 1, end
}
