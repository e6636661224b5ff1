package filter

import (
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

// TimeBucket is one of the four time-of-day facets. A flight belongs to a
// bucket when its local clock time falls in [start, end).
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"   // 06:00-12:00
	BucketAfternoon TimeBucket = "afternoon" // 12:00-18:00
	BucketEvening   TimeBucket = "evening"   // 18:00-24:00
	BucketNight     TimeBucket = "night"     // 00:00-06:00
)

// BucketFor classifies a local instant by its clock hour.
func BucketFor(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return BucketMorning
	case h >= 12 && h < 18:
		return BucketAfternoon
	case h >= 18:
		return BucketEvening
	default:
		return BucketNight
	}
}

// MinPriceStep is the smallest gap kept between the price bounds when a bad
// update has to be repaired.
const MinPriceStep = 1.0

// Criteria holds the active facet restrictions. An empty set for a facet
// means "no restriction on that facet", never "exclude everything".
// Invariant: PriceMin <= PriceMax at all times; violating updates are
// repaired by clamping rather than rejected so the view stays renderable.
type Criteria struct {
	PriceMin         float64      `json:"price_min"`
	PriceMax         float64      `json:"price_max"`
	Stops            []int        `json:"stops,omitempty"`
	Airlines         []string     `json:"airlines,omitempty"`
	DepartureBuckets []TimeBucket `json:"departure_buckets,omitempty"`
	ArrivalBuckets   []TimeBucket `json:"arrival_buckets,omitempty"`
	DirectOnly       bool         `json:"direct_only"`
	EcoOnly          bool         `json:"eco_only"`
}

// Update is a partial criteria edit. Nil fields are left untouched; non-nil
// scalar fields replace individually and non-nil slice fields replace
// wholesale, including replacement by an empty slice to lift a restriction.
type Update struct {
	PriceMin         *float64
	PriceMax         *float64
	Stops            *[]int
	Airlines         *[]string
	DepartureBuckets *[]TimeBucket
	ArrivalBuckets   *[]TimeBucket
	DirectOnly       *bool
	EcoOnly          *bool
}

// UpdateFromRequest converts the wire-level filter payload into an Update.
func UpdateFromRequest(f *models.SearchFilters) Update {
	var u Update
	if f == nil {
		return u
	}
	u.PriceMin = f.PriceMin
	u.PriceMax = f.PriceMax
	u.Stops = f.Stops
	if f.Airlines != nil {
		airlines := append([]string(nil), (*f.Airlines)...)
		u.Airlines = &airlines
	}
	if f.DepartureBuckets != nil {
		buckets := toBuckets(*f.DepartureBuckets)
		u.DepartureBuckets = &buckets
	}
	if f.ArrivalBuckets != nil {
		buckets := toBuckets(*f.ArrivalBuckets)
		u.ArrivalBuckets = &buckets
	}
	u.DirectOnly = f.DirectOnly
	u.EcoOnly = f.EcoOnly
	return u
}

func toBuckets(names []string) []TimeBucket {
	buckets := make([]TimeBucket, 0, len(names))
	for _, n := range names {
		switch TimeBucket(n) {
		case BucketMorning, BucketAfternoon, BucketEvening, BucketNight:
			buckets = append(buckets, TimeBucket(n))
		}
	}
	return buckets
}

// DefaultCriteria returns the unrestricted criteria for a result set: the
// price range spans the whole set and every other facet is open.
func DefaultCriteria(offers []models.Offer) Criteria {
	min, max := PriceRange(offers)
	return Criteria{PriceMin: min, PriceMax: max}
}

// Merge applies a partial update and repairs the price bounds if they end up
// inverted: the bound that was just written wins and the other is clamped to
// one step away.
func (c *Criteria) Merge(u Update) {
	if u.PriceMin != nil {
		c.PriceMin = *u.PriceMin
	}
	if u.PriceMax != nil {
		c.PriceMax = *u.PriceMax
	}
	if c.PriceMin > c.PriceMax {
		if u.PriceMax != nil {
			c.PriceMin = c.PriceMax - MinPriceStep
		} else {
			c.PriceMax = c.PriceMin + MinPriceStep
		}
	}
	if u.Stops != nil {
		c.Stops = append([]int(nil), (*u.Stops)...)
	}
	if u.Airlines != nil {
		c.Airlines = append([]string(nil), (*u.Airlines)...)
	}
	if u.DepartureBuckets != nil {
		c.DepartureBuckets = append([]TimeBucket(nil), (*u.DepartureBuckets)...)
	}
	if u.ArrivalBuckets != nil {
		c.ArrivalBuckets = append([]TimeBucket(nil), (*u.ArrivalBuckets)...)
	}
	if u.DirectOnly != nil {
		c.DirectOnly = *u.DirectOnly
	}
	if u.EcoOnly != nil {
		c.EcoOnly = *u.EcoOnly
	}
}

// HasActive reports whether any facet restricts the given full price range.
// A price range that still spans [fullMin, fullMax] does not count as active.
func (c Criteria) HasActive(fullMin, fullMax float64) bool {
	if c.PriceMin > fullMin || c.PriceMax < fullMax {
		return true
	}
	return len(c.Stops) > 0 ||
		len(c.Airlines) > 0 ||
		len(c.DepartureBuckets) > 0 ||
		len(c.ArrivalBuckets) > 0 ||
		c.DirectOnly ||
		c.EcoOnly
}

// UniqueAirlines derives the distinct airline list from the unfiltered result
// set, in first-seen order. Active filters must not influence this.
func UniqueAirlines(offers []models.Offer) []models.Airline {
	seen := make(map[string]bool)
	airlines := make([]models.Airline, 0)
	for _, o := range offers {
		if !seen[o.Airline.Code] {
			seen[o.Airline.Code] = true
			airlines = append(airlines, o.Airline)
		}
	}
	return airlines
}

// PriceRange derives [min, max] total-price bounds over the unfiltered result
// set. Returns (0, 0) for an empty set.
func PriceRange(offers []models.Offer) (float64, float64) {
	if len(offers) == 0 {
		return 0, 0
	}
	min, max := offers[0].Price.Total, offers[0].Price.Total
	for _, o := range offers[1:] {
		if o.Price.Total < min {
			min = o.Price.Total
		}
		if o.Price.Total > max {
			max = o.Price.Total
		}
	}
	return min, max
}
