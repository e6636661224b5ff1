package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/timezone"
	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

var syntheticAirlines = []models.Airline{
	{Code: "AX", Name: "Axis Air"},
	{Code: "NV", Name: "Nova Wings"},
	{Code: "PC", Name: "Pacific Connect"},
	{Code: "BL", Name: "Blue Horizon"},
	{Code: "ML", Name: "Meridian Lines"},
}

// SyntheticProvider fabricates a deterministic offer set from the search
// request. It exists so the UI stays exercised when every remote provider
// fails or returns nothing; offers are stamped SourceSynthetic and must be
// clearly distinguishable from live inventory downstream.
type SyntheticProvider struct {
	MinOffers int
	MaxOffers int
}

func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{MinOffers: 8, MaxOffers: 14}
}

func (p *SyntheticProvider) Name() string { return "synthetic" }

func (p *SyntheticProvider) Source() models.OfferSource { return models.SourceSynthetic }

func (p *SyntheticProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Seed from the route and date so repeating a search reproduces the
	// same fabricated set.
	h := fnv.New64a()
	h.Write([]byte(req.Origin))
	h.Write([]byte(req.Destination))
	h.Write([]byte(req.DepartureDate))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	day, err := time.Parse("2006-01-02", req.DepartureDate)
	if err != nil {
		day = time.Now().AddDate(0, 0, 7)
	}

	count := p.MinOffers + rng.Intn(p.MaxOffers-p.MinOffers+1)
	offers := make([]models.Offer, 0, count)
	for i := 0; i < count; i++ {
		offers = append(offers, p.buildOffer(rng, req, day, i))
	}
	return offers, nil
}

func (p *SyntheticProvider) buildOffer(rng *rand.Rand, req models.SearchRequest, day time.Time, idx int) models.Offer {
	airline := syntheticAirlines[rng.Intn(len(syntheticAirlines))]
	stops := rng.Intn(3)

	// Spread departures across the whole day so every time bucket is
	// represented.
	depHour := rng.Intn(24)
	depMinute := 5 * rng.Intn(12)
	originLoc := timezone.GetLocationByAirport(req.Origin)
	departure := time.Date(day.Year(), day.Month(), day.Day(), depHour, depMinute, 0, 0, originLoc)

	duration := 90 + rng.Intn(360) + stops*45
	arrival := timezone.ConvertToAirportLocal(departure.Add(time.Duration(duration)*time.Minute), req.Destination)

	base := currency.RoundCents(120 + rng.Float64()*880)
	taxes := currency.RoundCents(base * 0.12)
	fees := currency.RoundCents(15 + rng.Float64()*30)
	total := currency.RoundCents(base + taxes + fees)

	amenities := []string{"wifi", "usb-power"}
	if rng.Intn(2) == 0 {
		amenities = append(amenities, "meal")
	}

	return models.Offer{
		ID:       fmt.Sprintf("syn-%s%s-%s-%02d", req.Origin, req.Destination, day.Format("20060102"), idx),
		Source:   models.SourceSynthetic,
		Provider: p.Name(),
		Airline:  airline,
		Legs: []models.Leg{
			{
				FlightNumber:    fmt.Sprintf("%s%d", airline.Code, 100+rng.Intn(900)),
				Origin:          req.Origin,
				Destination:     req.Destination,
				Departure:       departure,
				Arrival:         arrival,
				DurationMinutes: duration,
			},
		},
		DurationMinutes: duration,
		Stops:           stops,
		Price: models.PriceBreakdown{
			Base:      base,
			Taxes:     taxes,
			Fees:      fees,
			Total:     total,
			Currency:  "USD",
			Formatted: currency.FormatUSD(total),
		},
		AvailableSeats: 4 + rng.Intn(40),
		CabinClass:     req.CabinClass,
		Amenities:      amenities,
		Eco:            rng.Intn(3) == 0,
	}
}
