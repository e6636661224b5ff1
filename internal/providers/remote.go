package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/timezone"
	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

var ErrUpstreamFailure = errors.New("upstream search request failed")

type remoteResponse struct {
	Success bool          `json:"success"`
	Flights []remoteOffer `json:"flights"`
}

type remoteOffer struct {
	OfferID    string        `json:"offer_id"`
	Airline    remoteCarrier `json:"airline"`
	Legs       []remoteLeg   `json:"legs"`
	Duration   int           `json:"duration_minutes"`
	Stops      int           `json:"stops"`
	BasePrice  float64       `json:"base_price"`
	Taxes      float64       `json:"taxes"`
	Fees       float64       `json:"fees"`
	Currency   string        `json:"currency"`
	SeatsLeft  int           `json:"seats_left"`
	CabinClass string        `json:"cabin_class"`
	Amenities  []string      `json:"amenities"`
	Eco        bool          `json:"eco_friendly"`
}

type remoteCarrier struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type remoteLeg struct {
	FlightNumber string `json:"flight_number"`
	Origin       string `json:"origin"`
	OriginCity   string `json:"origin_city"`
	Destination  string `json:"destination"`
	DestCity     string `json:"destination_city"`
	DepartAt     string `json:"depart_at"`
	ArriveAt     string `json:"arrive_at"`
	Duration     int    `json:"duration_minutes"`
}

// RemoteProvider queries one upstream search API over HTTP and normalizes
// its offers into the engine's model. Times are re-expressed in the
// airport's local zone so bucket classification works on local clock time.
type RemoteProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteProvider(name, baseURL, apiKey string, timeout time.Duration) *RemoteProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *RemoteProvider) Name() string { return p.name }

func (p *RemoteProvider) Source() models.OfferSource { return models.SourceRemote }

func (p *RemoteProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	payload, err := json.Marshal(map[string]any{
		"origin":         req.Origin,
		"destination":    req.Destination,
		"departure_date": req.DepartureDate,
		"passengers":     req.Passengers,
		"cabin_class":    req.CabinClass,
	})
	if err != nil {
		return nil, NewProviderError(p.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, NewProviderError(p.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, NewProviderError(p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError(p.name, fmt.Errorf("%w: status %d", ErrUpstreamFailure, resp.StatusCode))
	}

	var body remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, NewProviderError(p.name, err)
	}
	if !body.Success {
		return nil, NewProviderError(p.name, ErrUpstreamFailure)
	}

	offers := make([]models.Offer, 0, len(body.Flights))
	for _, f := range body.Flights {
		offer, err := p.normalize(f)
		if err != nil {
			continue
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (p *RemoteProvider) normalize(f remoteOffer) (models.Offer, error) {
	legs := make([]models.Leg, 0, len(f.Legs))
	for _, l := range f.Legs {
		depTime, err := timezone.ParseTime(l.DepartAt, "")
		if err != nil {
			return models.Offer{}, err
		}
		arrTime, err := timezone.ParseTime(l.ArriveAt, "")
		if err != nil {
			return models.Offer{}, err
		}
		legs = append(legs, models.Leg{
			FlightNumber:    l.FlightNumber,
			Origin:          l.Origin,
			OriginCity:      l.OriginCity,
			Destination:     l.Destination,
			DestinationCity: l.DestCity,
			Departure:       timezone.ConvertToAirportLocal(depTime, l.Origin),
			Arrival:         timezone.ConvertToAirportLocal(arrTime, l.Destination),
			DurationMinutes: l.Duration,
		})
	}
	if len(legs) == 0 {
		return models.Offer{}, fmt.Errorf("offer %s has no legs", f.OfferID)
	}

	total := currency.RoundCents(f.BasePrice + f.Taxes + f.Fees)
	return models.Offer{
		ID:       f.OfferID,
		Source:   models.SourceRemote,
		Provider: p.name,
		Airline: models.Airline{
			Code: f.Airline.Code,
			Name: f.Airline.Name,
		},
		Legs:            legs,
		DurationMinutes: f.Duration,
		Stops:           f.Stops,
		Price: models.PriceBreakdown{
			Base:      f.BasePrice,
			Taxes:     f.Taxes,
			Fees:      f.Fees,
			Total:     total,
			Currency:  f.Currency,
			Formatted: currency.Format(total, f.Currency),
		},
		AvailableSeats: f.SeatsLeft,
		CabinClass:     f.CabinClass,
		Amenities:      f.Amenities,
		Eco:            f.Eco,
	}, nil
}
