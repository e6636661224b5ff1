// Package seatmap models one aircraft's seat inventory partitioned into
// cabin classes, plus the selection rules applied while the traveler picks
// seats: one cabin per selection, occupied seats untouchable, price summed
// from cabin-multiplier-adjusted seat prices.
package seatmap

import (
	"fmt"

	"github.com/dharmasatrya/flightbooking/pkg/currency"
)

type CabinClass string

const (
	CabinFirst          CabinClass = "first"
	CabinBusiness       CabinClass = "business"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinEconomy        CabinClass = "economy"
)

type SeatStatus string

const (
	StatusAvailable SeatStatus = "available"
	StatusOccupied  SeatStatus = "occupied"
	StatusSelected  SeatStatus = "selected"
	StatusBlocked   SeatStatus = "blocked"
)

type Position string

const (
	PositionWindow Position = "window"
	PositionMiddle Position = "middle"
	PositionAisle  Position = "aisle"
)

type Feature string

const (
	FeatureExtraLegroom Feature = "extra_legroom"
	FeatureAisleAccess  Feature = "aisle_access"
	FeatureWindowView   Feature = "window_view"
	FeatureRecline      Feature = "recline"
	FeatureLieFlat      Feature = "lie_flat"
)

// CabinRange maps a contiguous row interval to a cabin class and its price
// multiplier. Seat cabin membership is always derived from the row via this
// table so the two can never drift apart.
type CabinRange struct {
	Cabin      CabinClass `json:"cabin"`
	FirstRow   int        `json:"first_row"`
	LastRow    int        `json:"last_row"`
	Multiplier float64    `json:"multiplier"`
}

// Aircraft describes a fixed cabin configuration.
type Aircraft struct {
	Model   string       `json:"model"`
	Columns []string     `json:"columns"`
	Cabins  []CabinRange `json:"cabins"`
}

// CabinFor resolves a row number to its cabin and multiplier. Rows outside
// every range fall back to economy at 1x.
func (a Aircraft) CabinFor(row int) (CabinClass, float64) {
	for _, r := range a.Cabins {
		if row >= r.FirstRow && row <= r.LastRow {
			return r.Cabin, r.Multiplier
		}
	}
	return CabinEconomy, 1.0
}

// Rows returns the highest row number covered by the cabin table.
func (a Aircraft) Rows() int {
	last := 0
	for _, r := range a.Cabins {
		if r.LastRow > last {
			last = r.LastRow
		}
	}
	return last
}

// DefaultAircraft is the single-aisle configuration used when the inventory
// service does not supply one.
func DefaultAircraft() Aircraft {
	return Aircraft{
		Model:   "A320neo",
		Columns: []string{"A", "B", "C", "D", "E", "F"},
		Cabins: []CabinRange{
			{Cabin: CabinFirst, FirstRow: 1, LastRow: 2, Multiplier: 4.0},
			{Cabin: CabinBusiness, FirstRow: 3, LastRow: 7, Multiplier: 2.5},
			{Cabin: CabinPremiumEconomy, FirstRow: 8, LastRow: 12, Multiplier: 1.5},
			{Cabin: CabinEconomy, FirstRow: 13, LastRow: 30, Multiplier: 1.0},
		},
	}
}

type Seat struct {
	ID       string     `json:"id"` // row+column, e.g. "12A"
	Row      int        `json:"row"`
	Column   string     `json:"column"`
	Cabin    CabinClass `json:"cabin"`
	Status   SeatStatus `json:"status"`
	Price    float64    `json:"price"`
	Features []Feature  `json:"features,omitempty"`
	Position Position   `json:"position"`
}

// Map is one flight leg's seat inventory. Occupied seats are set by the
// external inventory and are immutable here.
type Map struct {
	FlightID  string   `json:"flight_id"`
	LegIndex  int      `json:"leg_index"`
	Aircraft  Aircraft `json:"aircraft"`
	BasePrice float64  `json:"base_price"`
	Currency  string   `json:"currency"`
	Seats     []Seat   `json:"seats"`

	index map[string]int
}

// SeatID builds the canonical row+column identifier.
func SeatID(row int, column string) string {
	return fmt.Sprintf("%d%s", row, column)
}

// Seat looks a seat up by identifier.
func (m *Map) Seat(id string) (*Seat, bool) {
	if m.index == nil {
		m.reindex()
	}
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return &m.Seats[i], true
}

func (m *Map) reindex() {
	m.index = make(map[string]int, len(m.Seats))
	for i, s := range m.Seats {
		m.index[s.ID] = i
	}
}

// Clone returns a copy with a detached seat list. Selections keep mutating
// seat statuses on the live map, so anything handed to a caller that reads it
// outside the owner's lock must be a clone.
func (m *Map) Clone() *Map {
	clone := *m
	clone.Seats = append([]Seat(nil), m.Seats...)
	clone.index = nil
	return &clone
}

// FormattedPrice renders a seat price for display.
func (m *Map) FormattedPrice(s Seat) string {
	code := m.Currency
	if code == "" {
		code = "USD"
	}
	return currency.Format(s.Price, code)
}
