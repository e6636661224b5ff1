package seatmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMap builds a tiny two-cabin inventory with known statuses so selection
// rules can be exercised without generator randomness.
func testMap() *Map {
	aircraft := Aircraft{
		Model:   "test",
		Columns: []string{"A", "B", "C"},
		Cabins: []CabinRange{
			{Cabin: CabinBusiness, FirstRow: 1, LastRow: 5, Multiplier: 2.5},
			{Cabin: CabinEconomy, FirstRow: 6, LastRow: 20, Multiplier: 1.0},
		},
	}

	m := &Map{
		FlightID:  "FL-1",
		Aircraft:  aircraft,
		BasePrice: 30,
		Currency:  "USD",
	}
	for row := 1; row <= aircraft.Rows(); row++ {
		cabin, multiplier := aircraft.CabinFor(row)
		for _, col := range aircraft.Columns {
			m.Seats = append(m.Seats, Seat{
				ID:     SeatID(row, col),
				Row:    row,
				Column: col,
				Cabin:  cabin,
				Status: StatusAvailable,
				Price:  30 * multiplier,
			})
		}
	}

	occupied, _ := m.Seat("14B")
	occupied.Status = StatusOccupied
	blocked, _ := m.Seat("15C")
	blocked.Status = StatusBlocked
	return m
}

func TestToggleSelectsAndPrices(t *testing.T) {
	sel := NewSelection(testMap())

	require.True(t, sel.Toggle("12A"))
	require.True(t, sel.Toggle("14C"))

	assert.Equal(t, []string{"12A", "14C"}, sel.SelectedIDs())
	assert.Equal(t, 60.0, sel.TotalPrice())

	cabin, locked := sel.LockedCabin()
	assert.True(t, locked)
	assert.Equal(t, CabinEconomy, cabin)
}

func TestToggleRejectsCrossCabin(t *testing.T) {
	sel := NewSelection(testMap())

	require.True(t, sel.Toggle("12A")) // economy locks the cabin

	assert.False(t, sel.Toggle("3B")) // business is another cabin
	assert.Equal(t, []string{"12A"}, sel.SelectedIDs())
	assert.Equal(t, 30.0, sel.TotalPrice())

	// Same cabin still works after the rejection.
	assert.True(t, sel.Toggle("14C"))
	assert.Equal(t, 60.0, sel.TotalPrice())
}

func TestToggleRejectsOccupiedBlockedAndUnknown(t *testing.T) {
	m := testMap()
	sel := NewSelection(m)

	assert.False(t, sel.Toggle("14B")) // occupied
	assert.False(t, sel.Toggle("15C")) // blocked
	assert.False(t, sel.Toggle("99Z")) // not on the map
	assert.Empty(t, sel.SelectedIDs())

	blocked, _ := m.Seat("15C")
	assert.Equal(t, StatusBlocked, blocked.Status)

	_, locked := sel.LockedCabin()
	assert.False(t, locked)
}

func TestDeselectionAlwaysAllowed(t *testing.T) {
	m := testMap()
	sel := NewSelection(m)

	require.True(t, sel.Toggle("12A"))
	require.True(t, sel.Toggle("12C"))

	// Deselecting flips the seat back to available.
	assert.True(t, sel.Toggle("12A"))
	assert.Equal(t, []string{"12C"}, sel.SelectedIDs())
	seat, _ := m.Seat("12A")
	assert.Equal(t, StatusAvailable, seat.Status)

	// The lock follows the earliest surviving selection.
	cabin, locked := sel.LockedCabin()
	assert.True(t, locked)
	assert.Equal(t, CabinEconomy, cabin)
}

func TestClearUnlocksCabin(t *testing.T) {
	m := testMap()
	sel := NewSelection(m)

	require.True(t, sel.Toggle("12A"))
	require.False(t, sel.Toggle("3B"))

	sel.Clear()
	_, locked := sel.LockedCabin()
	assert.False(t, locked)
	seat, _ := m.Seat("12A")
	assert.Equal(t, StatusAvailable, seat.Status)

	// With the lock gone, business is selectable.
	assert.True(t, sel.Toggle("3B"))
	assert.Equal(t, 75.0, sel.TotalPrice())
}

func TestConfirmRequiresSelection(t *testing.T) {
	sel := NewSelection(testMap())

	_, err := sel.Confirm()
	assert.ErrorIs(t, err, ErrEmptySelection)

	require.True(t, sel.Toggle("12A"))
	ids, err := sel.Confirm()
	require.NoError(t, err)
	assert.Equal(t, []string{"12A"}, ids)
}

func TestCabinForMultipliers(t *testing.T) {
	aircraft := DefaultAircraft()

	cases := []struct {
		row        int
		cabin      CabinClass
		multiplier float64
	}{
		{1, CabinFirst, 4.0},
		{2, CabinFirst, 4.0},
		{3, CabinBusiness, 2.5},
		{7, CabinBusiness, 2.5},
		{8, CabinPremiumEconomy, 1.5},
		{12, CabinPremiumEconomy, 1.5},
		{13, CabinEconomy, 1.0},
		{30, CabinEconomy, 1.0},
		{99, CabinEconomy, 1.0}, // outside every range falls back
	}
	for _, tc := range cases {
		cabin, multiplier := aircraft.CabinFor(tc.row)
		assert.Equal(t, tc.cabin, cabin, "row %d", tc.row)
		assert.Equal(t, tc.multiplier, multiplier, "row %d", tc.row)
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	gen := NewGenerator()

	first, err := gen.SeatMap(context.Background(), "FL-7", 0, 30, "USD")
	require.NoError(t, err)
	second, err := gen.SeatMap(context.Background(), "FL-7", 0, 30, "USD")
	require.NoError(t, err)

	require.Equal(t, len(first.Seats), len(second.Seats))
	for i := range first.Seats {
		assert.Equal(t, first.Seats[i].ID, second.Seats[i].ID)
		assert.Equal(t, first.Seats[i].Status, second.Seats[i].Status)
	}

	// A different leg gets its own occupancy pattern but the same layout.
	other, err := gen.SeatMap(context.Background(), "FL-7", 1, 30, "USD")
	require.NoError(t, err)
	assert.Equal(t, len(first.Seats), len(other.Seats))
}

func TestCloneDetachedFromLiveMap(t *testing.T) {
	m := testMap()
	sel := NewSelection(m)
	clone := m.Clone()

	require.True(t, sel.Toggle("12A"))

	live, _ := m.Seat("12A")
	assert.Equal(t, StatusSelected, live.Status)
	detached, ok := clone.Seat("12A")
	require.True(t, ok)
	assert.Equal(t, StatusAvailable, detached.Status)
}

func TestGeneratorSeedsFullLegIndex(t *testing.T) {
	gen := NewGenerator()

	low, err := gen.SeatMap(context.Background(), "FL-7", 0, 30, "USD")
	require.NoError(t, err)
	high, err := gen.SeatMap(context.Background(), "FL-7", 256, 30, "USD")
	require.NoError(t, err)

	// Leg indices that agree modulo 256 must still get distinct occupancy.
	same := true
	for i := range low.Seats {
		if low.Seats[i].Status != high.Seats[i].Status {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestGeneratorPricesFollowCabinMultiplier(t *testing.T) {
	gen := NewGenerator()
	m, err := gen.SeatMap(context.Background(), "FL-7", 0, 30, "USD")
	require.NoError(t, err)

	firstRow, ok := m.Seat("1A")
	require.True(t, ok)
	assert.Equal(t, 120.0, firstRow.Price)

	economy, ok := m.Seat("20F")
	require.True(t, ok)
	assert.Equal(t, 30.0, economy.Price)
}
