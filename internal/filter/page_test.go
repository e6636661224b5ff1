package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerClampsOutOfRangePages(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(25)

	p.SetPage(0)
	assert.Equal(t, 1, p.Page())

	p.SetPage(99)
	assert.Equal(t, 3, p.Page())

	p.SetPage(-4)
	assert.Equal(t, 1, p.Page())
}

func TestPagerReclampsWhenTotalShrinks(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(45)
	p.SetPage(5)
	require.Equal(t, 5, p.Page())

	// A filter change shrank the sequence under the selected page.
	p.SetTotal(12)
	assert.Equal(t, 2, p.Page())
	assert.Equal(t, 2, p.PageCount())
}

func TestPagerEmptySequence(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(0)

	assert.Equal(t, 1, p.Page())
	assert.Equal(t, 1, p.PageCount())

	start, end := p.Bounds()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)

	from, to := p.Showing()
	assert.Equal(t, 0, from)
	assert.Equal(t, 0, to)
}

func TestPagerBoundsAndShowing(t *testing.T) {
	p := NewPager(10)
	p.SetTotal(25)

	p.SetPage(3)
	start, end := p.Bounds()
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	from, to := p.Showing()
	assert.Equal(t, 21, from)
	assert.Equal(t, 25, to)
}

func TestViewResetsPageOnFilterAndSortChange(t *testing.T) {
	offers := fixtureOffers()
	view := NewView(offers, 2)

	view.SetPage(3)
	_, meta := view.Page()
	require.Equal(t, 3, meta.Page)

	view.UpdateCriteria(Update{DirectOnly: ptr(true)})
	_, meta = view.Page()
	assert.Equal(t, 1, meta.Page)

	view.SetPage(1)
	view.SetSortKey(SortPriceDesc)
	_, meta = view.Page()
	assert.Equal(t, 1, meta.Page)
}

func TestViewPageSlices(t *testing.T) {
	offers := fixtureOffers()
	view := NewView(offers, 2)
	view.SetSortKey(SortPriceAsc)

	page, meta := view.Page()
	require.Len(t, page, 2)
	assert.Equal(t, "o0", page[0].ID)
	assert.Equal(t, "o1", page[1].ID)
	assert.Equal(t, 3, meta.PageCount)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 1, meta.ShowingFrom)
	assert.Equal(t, 2, meta.ShowingTo)

	view.SetPage(3)
	page, meta = view.Page()
	require.Len(t, page, 1)
	assert.Equal(t, "o4", page[0].ID)
	assert.Equal(t, 5, meta.ShowingFrom)
	assert.Equal(t, 5, meta.ShowingTo)
}

func TestViewClearCriteriaRestoresFullSet(t *testing.T) {
	offers := fixtureOffers()
	view := NewView(offers, 10)

	view.UpdateCriteria(Update{Airlines: ptrSlice([]string{"PC"})})
	require.Len(t, view.Results(), 1)
	assert.True(t, view.HasActiveFilters())

	view.ClearCriteria()
	assert.Len(t, view.Results(), len(offers))
	assert.False(t, view.HasActiveFilters())
}
