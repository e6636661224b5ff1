package models

type SearchMetadata struct {
	TotalResults       int      `json:"total_results"`
	ProvidersQueried   int      `json:"providers_queried"`
	ProvidersSucceeded int      `json:"providers_succeeded"`
	ProvidersFailed    int      `json:"providers_failed"`
	FailedProviders    []string `json:"failed_providers,omitempty"`
	FallbackUsed       bool     `json:"fallback_used"`
	SearchTimeMs       int64    `json:"search_time_ms"`
	CacheHit           bool     `json:"cache_hit"`
}

// Facets sizes the filter widgets. Both values are derived from the
// unfiltered result set so that narrowing filters never shrinks the widgets'
// own bounds.
type Facets struct {
	Airlines      []Airline `json:"airlines"`
	PriceRangeMin float64   `json:"price_range_min"`
	PriceRangeMax float64   `json:"price_range_max"`
}

type Pagination struct {
	Page        int `json:"page"`
	PageSize    int `json:"page_size"`
	PageCount   int `json:"page_count"`
	ShowingFrom int `json:"showing_from"`
	ShowingTo   int `json:"showing_to"`
	Total       int `json:"total"`
}

type SearchCriteria struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	ReturnDate    *string        `json:"return_date,omitempty"`
	Passengers    int            `json:"passengers"`
	CabinClass    string         `json:"cabin_class"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by"`
}

type SearchResponse struct {
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Metadata       SearchMetadata `json:"metadata"`
	Facets         Facets         `json:"facets"`
	Pagination     Pagination     `json:"pagination"`
	Flights        []Offer        `json:"flights"`
}

type RoundTripResponse struct {
	SearchCriteria  SearchCriteria `json:"search_criteria"`
	Metadata        SearchMetadata `json:"metadata"`
	OutboundFlights []Offer        `json:"outbound_flights"`
	ReturnFlights   []Offer        `json:"return_flights"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
