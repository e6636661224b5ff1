package booking

import (
	"fmt"
	"time"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusExpired        Status = "expired"
	StatusCancelled      Status = "cancelled"
)

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusExpired || s == StatusCancelled
}

// Session is the time-boxed aggregate of a traveler's selected flights,
// passengers and computed price awaiting payment. The deadline is an
// absolute instant; remaining time is always recomputed as deadline minus
// now, never decremented, so it survives clock pauses correctly. All
// mutation happens under the Manager's lock.
type Session struct {
	ID         string             `json:"id"`
	Flights    []models.Offer     `json:"flights"`
	Passengers []models.Passenger `json:"passengers"`
	Pricing    Pricing            `json:"pricing"`
	Status     Status             `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	Deadline   time.Time          `json:"deadline"`

	// Live seat selections per flight leg, keyed by legKey. They exist only
	// while the seat screen is open; confirmed ids are what the booking keeps.
	selections map[string]*seatmap.Selection
	// ConfirmedSeats maps leg key to the immutable confirmed seat id list.
	ConfirmedSeats map[string][]string `json:"confirmed_seats,omitempty"`
}

func legKey(flightID string, legIndex int) string {
	return fmt.Sprintf("%s#%d", flightID, legIndex)
}

// offer returns the selected offer with the given id, if the session holds it.
func (s *Session) offer(flightID string) (models.Offer, bool) {
	for _, o := range s.Flights {
		if o.ID == flightID {
			return o, true
		}
	}
	return models.Offer{}, false
}

// Remaining is the wall-clock time left before expiry, clamped at zero.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.Deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// seatExtras sums the confirmed seat charges across all legs.
func (s *Session) seatExtras() float64 {
	total := 0.0
	for key, ids := range s.ConfirmedSeats {
		sel, ok := s.selections[key]
		if !ok {
			continue
		}
		for _, id := range ids {
			if seat, found := sel.SeatMap().Seat(id); found {
				total += seat.Price
			}
		}
	}
	return total
}

// Snapshot is the wire representation of a session, including the derived
// remaining seconds.
type Snapshot struct {
	ID               string              `json:"id"`
	Flights          []models.Offer      `json:"flights"`
	Passengers       []models.Passenger  `json:"passengers"`
	Pricing          Pricing             `json:"pricing"`
	Status           Status              `json:"status"`
	CreatedAt        time.Time           `json:"created_at"`
	Deadline         time.Time           `json:"deadline"`
	RemainingSeconds int64               `json:"remaining_seconds"`
	ConfirmedSeats   map[string][]string `json:"confirmed_seats,omitempty"`
}

// snapshot detaches all mutable state from the live session. Handlers marshal
// snapshots after the manager lock is released, so sharing the confirmed-seat
// map here would race with later confirms.
func (s *Session) snapshot(now time.Time) Snapshot {
	var seats map[string][]string
	if s.ConfirmedSeats != nil {
		seats = make(map[string][]string, len(s.ConfirmedSeats))
		for key, ids := range s.ConfirmedSeats {
			seats[key] = append([]string(nil), ids...)
		}
	}
	return Snapshot{
		ID:               s.ID,
		Flights:          s.Flights,
		Passengers:       s.Passengers,
		Pricing:          s.Pricing,
		Status:           s.Status,
		CreatedAt:        s.CreatedAt,
		Deadline:         s.Deadline,
		RemainingSeconds: int64(s.Remaining(now) / time.Second),
		ConfirmedSeats:   seats,
	}
}
