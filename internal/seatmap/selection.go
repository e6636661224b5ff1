package seatmap

import "errors"

var ErrEmptySelection = errors.New("no seats selected")

// Selection tracks the seats picked on one seat map. The first selected seat
// locks the cabin class; clicks in any other cabin are silent no-ops until
// the selection is emptied again. Occupied and blocked seats can never be
// selected. Deselection is always permitted.
type Selection struct {
	seatMap  *Map
	selected map[string]bool
	order    []string
}

func NewSelection(m *Map) *Selection {
	return &Selection{
		seatMap:  m,
		selected: make(map[string]bool),
	}
}

// Toggle flips seat membership in the selection. It returns true when the
// selection changed; rejected attempts (unknown, occupied, blocked or
// cross-cabin seats) return false and leave everything untouched.
func (s *Selection) Toggle(seatID string) bool {
	seat, ok := s.seatMap.Seat(seatID)
	if !ok {
		return false
	}

	if s.selected[seatID] {
		seat.Status = StatusAvailable
		delete(s.selected, seatID)
		s.order = removeID(s.order, seatID)
		return true
	}

	if seat.Status != StatusAvailable {
		return false
	}
	if locked, ok := s.LockedCabin(); ok && seat.Cabin != locked {
		return false
	}

	seat.Status = StatusSelected
	s.selected[seatID] = true
	s.order = append(s.order, seatID)
	return true
}

// Clear deselects everything, unlocking the cabin choice.
func (s *Selection) Clear() {
	for id := range s.selected {
		if seat, ok := s.seatMap.Seat(id); ok {
			seat.Status = StatusAvailable
		}
	}
	s.selected = make(map[string]bool)
	s.order = nil
}

// SeatMap exposes the underlying inventory the selection was built on.
func (s *Selection) SeatMap() *Map {
	return s.seatMap
}

// LockedCabin returns the cabin pinned by the current selection. The lock is
// derived, not stored: an empty selection means no lock.
func (s *Selection) LockedCabin() (CabinClass, bool) {
	if len(s.order) == 0 {
		return "", false
	}
	seat, ok := s.seatMap.Seat(s.order[0])
	if !ok {
		return "", false
	}
	return seat.Cabin, true
}

// SelectedIDs returns the selected seat identifiers in selection order.
func (s *Selection) SelectedIDs() []string {
	return append([]string(nil), s.order...)
}

// TotalPrice sums the selected seats' multiplier-adjusted prices.
func (s *Selection) TotalPrice() float64 {
	total := 0.0
	for _, id := range s.order {
		if seat, ok := s.seatMap.Seat(id); ok {
			total += seat.Price
		}
	}
	return total
}

// Confirm hands back an immutable list of the selected seat identifiers. It
// does not mutate seat occupancy; releasing or committing the seats against
// real inventory is the booking service's job once the booking is finalized.
func (s *Selection) Confirm() ([]string, error) {
	if len(s.order) == 0 {
		return nil, ErrEmptySelection
	}
	return s.SelectedIDs(), nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
