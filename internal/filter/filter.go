package filter

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/ranking"
)

// SortKey selects a total order over offers. Ties keep the original offer
// order (all sorts are stable).
type SortKey string

const (
	SortBest          SortKey = "best"
	SortPriceAsc      SortKey = "price-asc"
	SortPriceDesc     SortKey = "price-desc"
	SortDurationAsc   SortKey = "duration-asc"
	SortDepartureAsc  SortKey = "departure-asc"
	SortDepartureDesc SortKey = "departure-desc"
	SortArrivalAsc    SortKey = "arrival-asc"
	SortArrivalDesc   SortKey = "arrival-desc"
)

// ParseSortKey maps a request string onto a SortKey, defaulting to best.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortBest, SortPriceAsc, SortPriceDesc, SortDurationAsc,
		SortDepartureAsc, SortDepartureDesc, SortArrivalAsc, SortArrivalDesc:
		return k
	default:
		return SortBest
	}
}

// Apply is a pure function of (offers, criteria, sort key). It intersects all
// active facet predicates (AND semantics), then sorts the survivors. The
// input slice is never mutated.
func Apply(offers []models.Offer, c Criteria, key SortKey) []models.Offer {
	filtered := make([]models.Offer, 0, len(offers))
	for _, o := range offers {
		if matches(o, c) {
			filtered = append(filtered, o)
		}
	}
	return applySort(filtered, key)
}

func matches(o models.Offer, c Criteria) bool {
	if o.Price.Total < c.PriceMin || o.Price.Total > c.PriceMax {
		return false
	}

	if len(c.Stops) > 0 && !containsInt(c.Stops, o.Stops) {
		return false
	}

	if len(c.Airlines) > 0 {
		found := false
		for _, code := range c.Airlines {
			if strings.EqualFold(o.Airline.Code, code) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(c.DepartureBuckets) > 0 && !containsBucket(c.DepartureBuckets, BucketFor(o.Departure())) {
		return false
	}
	if len(c.ArrivalBuckets) > 0 && !containsBucket(c.ArrivalBuckets, BucketFor(o.Arrival())) {
		return false
	}

	if c.DirectOnly && o.Stops != 0 {
		return false
	}
	if c.EcoOnly && !o.Eco {
		return false
	}

	return true
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsBucket(set []TimeBucket, v TimeBucket) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func applySort(offers []models.Offer, key SortKey) []models.Offer {
	if len(offers) == 0 {
		return offers
	}

	switch key {
	case SortPriceAsc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Price.Total < offers[j].Price.Total
		})

	case SortPriceDesc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Price.Total > offers[j].Price.Total
		})

	case SortDurationAsc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].DurationMinutes < offers[j].DurationMinutes
		})

	case SortDepartureAsc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Departure().Before(offers[j].Departure())
		})

	case SortDepartureDesc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Departure().After(offers[j].Departure())
		})

	case SortArrivalAsc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Arrival().Before(offers[j].Arrival())
		})

	case SortArrivalDesc:
		sort.SliceStable(offers, func(i, j int) bool {
			return offers[i].Arrival().After(offers[j].Arrival())
		})

	default: // SortBest
		scores := ranking.Scores(offers)
		indexed := make([]int, len(offers))
		for i := range indexed {
			indexed[i] = i
		}
		sort.SliceStable(indexed, func(i, j int) bool {
			return scores[indexed[i]] < scores[indexed[j]]
		})
		sorted := make([]models.Offer, len(offers))
		for i, idx := range indexed {
			sorted[i] = offers[idx]
		}
		return sorted
	}

	return offers
}
