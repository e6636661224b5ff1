package models

// SearchFilters is the over-the-wire shape of a partial facet update. Pointer
// fields distinguish "not supplied" from an explicit value: scalar fields
// replace individually, slice fields replace wholesale (no element merge).
type SearchFilters struct {
	PriceMin         *float64  `json:"price_min,omitempty"`
	PriceMax         *float64  `json:"price_max,omitempty"`
	Stops            *[]int    `json:"stops,omitempty"`
	Airlines         *[]string `json:"airlines,omitempty"`
	DepartureBuckets *[]string `json:"departure_buckets,omitempty"`
	ArrivalBuckets   *[]string `json:"arrival_buckets,omitempty"`
	DirectOnly       *bool     `json:"direct_only,omitempty"`
	EcoOnly          *bool     `json:"eco_only,omitempty"`
}

type SearchRequest struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Passengers    int            `json:"passengers"`
	CabinClass    string         `json:"cabin_class"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by,omitempty"`
	Page          int            `json:"page,omitempty"`
	PageSize      int            `json:"page_size,omitempty"`
}

func (r *SearchRequest) Validate() error {
	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if r.Passengers <= 0 {
		r.Passengers = 1
	}
	if r.CabinClass == "" {
		r.CabinClass = "economy"
	}
	if r.SortBy == "" {
		r.SortBy = "best"
	}
	if r.Page <= 0 {
		r.Page = 1
	}
	return nil
}

// CreateBookingRequest carries the traveler's selection into a booking
// session. Offers arrive exactly as they were returned by search; the core
// treats them as already validated.
type CreateBookingRequest struct {
	Flights    []Offer     `json:"flights"`
	Passengers []Passenger `json:"passengers"`
	Insurance  float64     `json:"insurance,omitempty"`
}

func (r *CreateBookingRequest) Validate() error {
	if len(r.Flights) == 0 {
		return ErrNoFlightsSelected
	}
	if len(r.Passengers) == 0 {
		return ErrNoPassengers
	}
	if r.Insurance < 0 {
		r.Insurance = 0
	}
	return nil
}

// SeatToggleRequest flips one seat in a session's seat selection.
type SeatToggleRequest struct {
	FlightID string `json:"flight_id"`
	LegIndex int    `json:"leg_index"`
	SeatID   string `json:"seat_id"`
}

// BillingDetails is the card holder / contact block submitted with a payment.
// Optional sub-fields left empty are filled with placeholders downstream
// rather than rejected.
type BillingDetails struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

type PaymentRequest struct {
	Billing BillingDetails `json:"billing"`
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrNoFlightsSelected    ValidationError = "at least one flight is required"
	ErrNoPassengers         ValidationError = "at least one passenger is required"
)
