package filter

import "github.com/dharmasatrya/flightbooking/internal/models"

// View is the injected state container for one fixed result set: the active
// criteria, the sort key and the pager. Derived values (filtered results,
// facet bounds, page slices) are recomputed from current state on every call
// rather than cached, so the view can never drift out of sync with its
// inputs.
type View struct {
	offers   []models.Offer
	fullMin  float64
	fullMax  float64
	criteria Criteria
	sortKey  SortKey
	pager    Pager
}

// NewView captures a result set and starts from the unrestricted default
// criteria and best sort.
func NewView(offers []models.Offer, pageSize int) *View {
	min, max := PriceRange(offers)
	return &View{
		offers:   offers,
		fullMin:  min,
		fullMax:  max,
		criteria: DefaultCriteria(offers),
		sortKey:  SortBest,
		pager:    NewPager(pageSize),
	}
}

// UpdateCriteria merges a partial edit and resets pagination to page 1.
func (v *View) UpdateCriteria(u Update) {
	v.criteria.Merge(u)
	v.pager.Reset()
}

// ClearCriteria restores the unrestricted default and resets pagination.
func (v *View) ClearCriteria() {
	v.criteria = DefaultCriteria(v.offers)
	v.pager.Reset()
}

// SetSortKey changes the ordering and resets pagination to page 1.
func (v *View) SetSortKey(key SortKey) {
	v.sortKey = key
	v.pager.Reset()
}

// SetPage selects a page of the current results, clamped to a valid page.
func (v *View) SetPage(n int) {
	v.pager.SetTotal(len(v.Results()))
	v.pager.SetPage(n)
}

func (v *View) Criteria() Criteria { return v.criteria }
func (v *View) SortKey() SortKey   { return v.sortKey }

func (v *View) HasActiveFilters() bool {
	return v.criteria.HasActive(v.fullMin, v.fullMax)
}

// Results returns the filtered, sorted result set.
func (v *View) Results() []models.Offer {
	return Apply(v.offers, v.criteria, v.sortKey)
}

// Page returns the current page of results along with pagination metadata.
func (v *View) Page() ([]models.Offer, models.Pagination) {
	results := v.Results()
	v.pager.SetTotal(len(results))
	start, end := v.pager.Bounds()
	from, to := v.pager.Showing()
	return results[start:end], models.Pagination{
		Page:        v.pager.Page(),
		PageSize:    v.pager.PageSize(),
		PageCount:   v.pager.PageCount(),
		ShowingFrom: from,
		ShowingTo:   to,
		Total:       v.pager.Total(),
	}
}

// UniqueAirlines exposes the facet widget data for the unfiltered set.
func (v *View) UniqueAirlines() []models.Airline {
	return UniqueAirlines(v.offers)
}

// FullPriceRange exposes the unfiltered [min, max] price bounds.
func (v *View) FullPriceRange() (float64, float64) {
	return v.fullMin, v.fullMax
}
