package ranking

import (
	"math"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// Scores computes a best-value score for every offer. Scores are relative to
// the maximum price and duration inside the given set, so they are only
// comparable within one result set.
func Scores(offers []models.Offer) []float64 {
	scores := make([]float64, len(offers))
	if len(offers) == 0 {
		return scores
	}

	maxPrice := findMaxPrice(offers)
	maxDuration := findMaxDuration(offers)

	for i, o := range offers {
		scores[i] = BestValue(o, maxPrice, maxDuration)
	}

	return scores
}

// BestValue is monotonic in price, duration and stop count: an offer that is
// cheaper, shorter or more direct never scores worse, all else equal.
// Lower score = better value.
func BestValue(offer models.Offer, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (offer.Price.Total / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(offer.DurationMinutes) / maxDuration) * 100
	}

	stopsScore := float64(offer.Stops) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func findMaxPrice(offers []models.Offer) float64 {
	maxPrice := 0.0
	for _, o := range offers {
		if o.Price.Total > maxPrice {
			maxPrice = o.Price.Total
		}
	}
	return maxPrice
}

func findMaxDuration(offers []models.Offer) float64 {
	maxDuration := 0.0
	for _, o := range offers {
		dur := float64(o.DurationMinutes)
		if dur > maxDuration {
			maxDuration = dur
		}
	}
	return maxDuration
}
