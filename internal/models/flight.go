package models

import "time"

// OfferSource tells which path produced an offer. Synthetic offers come from
// the local fallback generator and must never be mistaken for live inventory.
type OfferSource string

const (
	SourceRemote    OfferSource = "remote"
	SourceSynthetic OfferSource = "synthetic"
)

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Leg is one flown segment of an itinerary. Departure and Arrival carry the
// airport's local zone so time-of-day classification works on local clock time.
type Leg struct {
	FlightNumber    string    `json:"flight_number"`
	Origin          string    `json:"origin"`
	OriginCity      string    `json:"origin_city,omitempty"`
	Destination     string    `json:"destination"`
	DestinationCity string    `json:"destination_city,omitempty"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMinutes int       `json:"duration_minutes"`
}

type PriceBreakdown struct {
	Base      float64 `json:"base"`
	Taxes     float64 `json:"taxes"`
	Fees      float64 `json:"fees"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted"`
}

// Offer is one bookable itinerary returned by search. Offers are immutable
// once produced; filtering and sorting only reorder or drop references.
type Offer struct {
	ID              string         `json:"id"`
	Source          OfferSource    `json:"source"`
	Provider        string         `json:"provider,omitempty"`
	Airline         Airline        `json:"airline"`
	Legs            []Leg          `json:"legs"`
	DurationMinutes int            `json:"duration_minutes"`
	Stops           int            `json:"stops"`
	Price           PriceBreakdown `json:"price"`
	AvailableSeats  int            `json:"available_seats"`
	CabinClass      string         `json:"cabin_class"`
	Amenities       []string       `json:"amenities,omitempty"`
	Eco             bool           `json:"eco"`
}

// Departure returns the local departure instant of the first leg.
func (o Offer) Departure() time.Time {
	if len(o.Legs) == 0 {
		return time.Time{}
	}
	return o.Legs[0].Departure
}

// Arrival returns the local arrival instant of the last leg.
func (o Offer) Arrival() time.Time {
	if len(o.Legs) == 0 {
		return time.Time{}
	}
	return o.Legs[len(o.Legs)-1].Arrival
}

// Passenger is externally validated traveler data captured into a booking
// session. The core never validates it beyond requiring a non-empty list.
type Passenger struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email,omitempty"`
	Type      string `json:"type,omitempty"` // adult, child, infant
}
