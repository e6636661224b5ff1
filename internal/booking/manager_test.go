package booking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/payment"
	"github.com/dharmasatrya/flightbooking/internal/queue"
	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

// fakeClock is a hand-driven time source so deadline tests never sleep.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// openInventory serves a fixed all-available seat map so seat tests are not
// subject to generated occupancy.
type openInventory struct{}

func (openInventory) SeatMap(ctx context.Context, flightID string, legIndex int, basePrice float64, cur string) (*seatmap.Map, error) {
	aircraft := seatmap.DefaultAircraft()
	m := &seatmap.Map{
		FlightID:  flightID,
		LegIndex:  legIndex,
		Aircraft:  aircraft,
		BasePrice: basePrice,
		Currency:  cur,
	}
	for row := 1; row <= aircraft.Rows(); row++ {
		cabin, multiplier := aircraft.CabinFor(row)
		for _, col := range aircraft.Columns {
			m.Seats = append(m.Seats, seatmap.Seat{
				ID:     seatmap.SeatID(row, col),
				Row:    row,
				Column: col,
				Cabin:  cabin,
				Status: seatmap.StatusAvailable,
				Price:  basePrice * multiplier,
			})
		}
	}
	return m, nil
}

func bookingOffer(id string, total float64) models.Offer {
	dep := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)
	return models.Offer{
		ID:     id,
		Source: models.SourceRemote,
		Airline: models.Airline{
			Code: "AX",
			Name: "AX Air",
		},
		Legs: []models.Leg{
			{
				FlightNumber:    "AX101",
				Origin:          "JFK",
				Destination:     "LAX",
				Departure:       dep,
				Arrival:         dep.Add(5 * time.Hour),
				DurationMinutes: 300,
			},
		},
		DurationMinutes: 300,
		Stops:           0,
		Price: models.PriceBreakdown{
			Base:     total * 0.8,
			Taxes:    total * 0.15,
			Fees:     total * 0.05,
			Total:    total,
			Currency: "USD",
		},
	}
}

func createRequest(totals ...float64) models.CreateBookingRequest {
	req := models.CreateBookingRequest{
		Passengers: []models.Passenger{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Type: "adult"},
			{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Type: "adult"},
		},
	}
	for i, total := range totals {
		req.Flights = append(req.Flights, bookingOffer("FL-"+string(rune('A'+i)), total))
	}
	return req
}

func newTestManager(t *testing.T) (*Manager, *fakeClock, *queue.RecordingPublisher, *payment.SandboxGateway) {
	t.Helper()
	clock := newFakeClock()
	publisher := &queue.RecordingPublisher{}
	gateway := payment.NewSandboxGateway()
	manager := NewManager(NewMemoryStore(), DefaultConfig(), gateway, publisher, openInventory{})
	manager.SetClock(clock.Now)
	return manager, clock, publisher, gateway
}

func TestCreatePricesPerPassenger(t *testing.T) {
	manager, _, publisher, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600, 900))
	require.NoError(t, err)

	// Two offers totalling 1500, two passengers.
	assert.Equal(t, 3000.0, snapshot.Pricing.Base)
	assert.Equal(t, 450.0, snapshot.Pricing.Taxes)
	assert.Equal(t, 25.0, snapshot.Pricing.Fees)
	assert.Equal(t, 0.0, snapshot.Pricing.Insurance)
	assert.Equal(t, 3475.0, snapshot.Pricing.Total)
	assert.Equal(t, "USD", snapshot.Pricing.Currency)

	assert.Equal(t, StatusPendingPayment, snapshot.Status)
	assert.Equal(t, int64(15*60), snapshot.RemainingSeconds)

	require.Len(t, publisher.Events, 1)
	assert.Equal(t, queue.EventBookingCreated, publisher.Events[0].Type)
	assert.Equal(t, snapshot.ID, publisher.Events[0].BookingID)
}

func TestCreateValidation(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	_, err := manager.Create(models.CreateBookingRequest{
		Passengers: []models.Passenger{{FirstName: "Ada", LastName: "Lovelace"}},
	})
	assert.ErrorIs(t, err, models.ErrNoFlightsSelected)

	_, err = manager.Create(models.CreateBookingRequest{
		Flights: []models.Offer{bookingOffer("FL-A", 500)},
	})
	assert.ErrorIs(t, err, models.ErrNoPassengers)
}

func TestPricingTotalInvariantAfterSeatConfirm(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	_, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14A"})
	require.NoError(t, err)
	_, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14B"})
	require.NoError(t, err)

	confirmed, err := manager.ConfirmSeats(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)

	// Two economy seats at the 30.0 base.
	assert.Equal(t, 60.0, confirmed.Pricing.Extras)
	expected := confirmed.Pricing.Base + confirmed.Pricing.Taxes + confirmed.Pricing.Fees +
		confirmed.Pricing.Insurance + confirmed.Pricing.Extras
	assert.Equal(t, expected, confirmed.Pricing.Total)
	assert.Equal(t, []string{"14A", "14B"}, confirmed.ConfirmedSeats["FL-A#0"])
}

func TestSeatCabinLockAcrossRequests(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	state, err := manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14A"})
	require.NoError(t, err)
	assert.True(t, state.Changed)
	assert.Equal(t, "economy", state.LockedCabin)

	// Business seat while economy is locked: silent no-op, not an error.
	state, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "3B"})
	require.NoError(t, err)
	assert.False(t, state.Changed)
	assert.Equal(t, []string{"14A"}, state.SelectedIDs)

	// Clearing unlocks the cabin.
	state, err = manager.ClearSeats(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)
	assert.Empty(t, state.SelectedIDs)
	assert.Empty(t, state.LockedCabin)

	state, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "3B"})
	require.NoError(t, err)
	assert.True(t, state.Changed)
	assert.Equal(t, "business", state.LockedCabin)
	assert.Equal(t, 75.0, state.TotalPrice)
}

func TestSeatMapRejectsUnknownFlight(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	_, err = manager.SeatMap(ctx, snapshot.ID, "FL-OTHER", 0)
	assert.ErrorIs(t, err, ErrFlightNotInSession)

	_, err = manager.SeatMap(ctx, snapshot.ID, "FL-A", 5)
	assert.ErrorIs(t, err, ErrFlightNotInSession)
}

func TestConfirmSeatsEmptySelection(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	_, err = manager.ConfirmSeats(context.Background(), snapshot.ID, "FL-A", 0)
	assert.ErrorIs(t, err, seatmap.ErrEmptySelection)
}

func TestExpiryIsOneWay(t *testing.T) {
	manager, clock, publisher, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
	assert.Equal(t, int64(0), got.RemainingSeconds)

	// Later ticks and extension attempts leave the expired session untouched.
	clock.Advance(time.Hour)
	assert.Equal(t, 0, manager.ExpireDue())

	_, err = manager.Extend(snapshot.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	got, err = manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)

	var types []string
	for _, e := range publisher.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{queue.EventBookingCreated, queue.EventBookingExpired}, types)
}

func TestRemainingRecomputedFromDeadline(t *testing.T) {
	manager, clock, _, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(4 * time.Minute)
	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11*60), got.RemainingSeconds)

	clock.Advance(10 * time.Minute)
	got, err = manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got.RemainingSeconds)
	assert.Equal(t, StatusPendingPayment, got.Status)
}

func TestExtendResetsDeadline(t *testing.T) {
	manager, clock, publisher, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(7 * time.Minute) // 8 minutes remain, above the threshold
	extended, err := manager.Extend(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15*60), extended.RemainingSeconds)
	assert.Equal(t, clock.Now().Add(15*time.Minute), extended.Deadline)

	// Pricing is untouched by extension.
	assert.Equal(t, snapshot.Pricing, extended.Pricing)

	last := publisher.Events[len(publisher.Events)-1]
	assert.Equal(t, queue.EventBookingExtended, last.Type)
}

func TestExtendRejectedNearDeadline(t *testing.T) {
	manager, clock, _, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(11 * time.Minute) // 4 minutes remain, below the 5-minute threshold
	_, err = manager.Extend(snapshot.ID)
	assert.ErrorIs(t, err, ErrExtendNotAllowed)

	// The failed attempt does not disturb the session.
	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, got.Status)
	assert.Equal(t, int64(4*60), got.RemainingSeconds)
}

func TestCancelIsTerminal(t *testing.T) {
	manager, _, publisher, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	cancelled, err := manager.Cancel(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = manager.Cancel(snapshot.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	_, err = manager.Extend(snapshot.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	last := publisher.Events[len(publisher.Events)-1]
	assert.Equal(t, queue.EventBookingCancelled, last.Type)
}

func TestMarkPaidClosesSession(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	paid, err := manager.MarkPaid(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, paid.Status)

	_, err = manager.MarkPaid(snapshot.ID)
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = manager.Cancel(snapshot.ID)
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestGetUnknownSession(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	_, err := manager.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitPaymentKeepsSessionPending(t *testing.T) {
	manager, _, publisher, _ := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	resp, err := manager.SubmitPayment(context.Background(), snapshot.ID, models.PaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "sbx_"+snapshot.ID, resp.ProviderRef)
	assert.NotEmpty(t, resp.RedirectURL)

	// Payment submission hands off to the provider; the session stays pending
	// until the confirmation callback.
	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, got.Status)

	last := publisher.Events[len(publisher.Events)-1]
	assert.Equal(t, queue.EventPaymentRequested, last.Type)
}

func TestSubmitPaymentFailureConsumesNoTime(t *testing.T) {
	manager, clock, _, gateway := newTestManager(t)
	gateway.FailWith = "card_declined"

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = manager.SubmitPayment(context.Background(), snapshot.ID, models.PaymentRequest{})
	require.Error(t, err)

	var ge *payment.GatewayError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "sandbox", ge.Gateway)

	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, got.Status)
	assert.Equal(t, snapshot.Deadline, got.Deadline)
	assert.Equal(t, int64(13*60), got.RemainingSeconds)
}

func TestSubmitPaymentAfterDeadline(t *testing.T) {
	manager, clock, _, gateway := newTestManager(t)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = manager.SubmitPayment(context.Background(), snapshot.ID, models.PaymentRequest{})
	assert.ErrorIs(t, err, ErrDeadlinePassed)
	assert.Equal(t, 0, gateway.Calls)
}

// closingGateway cancels the session while the payment request is in flight,
// exercising the stale-response guard.
type closingGateway struct {
	inner  payment.Gateway
	onCall func()
}

func (g *closingGateway) Name() string { return g.inner.Name() }

func (g *closingGateway) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResponse, error) {
	g.onCall()
	return g.inner.CreateIntent(ctx, req)
}

func TestSubmitPaymentStaleResponseDiscarded(t *testing.T) {
	clock := newFakeClock()
	publisher := &queue.RecordingPublisher{}
	gateway := &closingGateway{inner: payment.NewSandboxGateway()}
	manager := NewManager(NewMemoryStore(), DefaultConfig(), gateway, publisher, openInventory{})
	manager.SetClock(clock.Now)

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)
	gateway.onCall = func() {
		_, cancelErr := manager.Cancel(snapshot.ID)
		require.NoError(t, cancelErr)
	}

	_, err = manager.SubmitPayment(context.Background(), snapshot.ID, models.PaymentRequest{})
	assert.ErrorIs(t, err, ErrSessionClosed)

	got, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	for _, e := range publisher.Events {
		assert.NotEqual(t, queue.EventPaymentRequested, e.Type)
	}
}

func TestExpireDueSweepsOnlyDueSessions(t *testing.T) {
	manager, clock, _, _ := newTestManager(t)

	first, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	second, err := manager.Create(createRequest(700))
	require.NoError(t, err)

	clock.Advance(6 * time.Minute) // first is past its deadline, second is not
	assert.Equal(t, 1, manager.ExpireDue())

	got, err := manager.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)

	got, err = manager.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingPayment, got.Status)
}

func TestSnapshotDetachedFromLiveSession(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	_, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14A"})
	require.NoError(t, err)
	confirmed, err := manager.ConfirmSeats(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)

	// A later confirm must not show up in the already-taken snapshot.
	_, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14B"})
	require.NoError(t, err)
	_, err = manager.ConfirmSeats(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"14A"}, confirmed.ConfirmedSeats["FL-A#0"])

	current, err := manager.Get(snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"14A", "14B"}, current.ConfirmedSeats["FL-A#0"])
}

func TestSeatMapUnaffectedByLaterToggle(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	snapshot, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	before, err := manager.SeatMap(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)

	_, err = manager.ToggleSeat(ctx, snapshot.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14A"})
	require.NoError(t, err)

	seat, ok := before.Seat("14A")
	require.True(t, ok)
	assert.Equal(t, seatmap.StatusAvailable, seat.Status)

	after, err := manager.SeatMap(ctx, snapshot.ID, "FL-A", 0)
	require.NoError(t, err)
	seat, ok = after.Seat("14A")
	require.True(t, ok)
	assert.Equal(t, seatmap.StatusSelected, seat.Status)
}

// Exercises snapshot marshaling against concurrent seat confirms; run with
// the race detector to verify responses share no live session state.
func TestConcurrentSnapshotMarshalAndSeatConfirm(t *testing.T) {
	manager, _, _, _ := newTestManager(t)
	ctx := context.Background()

	created, err := manager.Create(createRequest(600))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				snapshot, getErr := manager.Get(created.ID)
				if getErr != nil {
					t.Error(getErr)
					return
				}
				if _, mErr := json.Marshal(snapshot); mErr != nil {
					t.Error(mErr)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = manager.ToggleSeat(ctx, created.ID, models.SeatToggleRequest{FlightID: "FL-A", SeatID: "14A"})
				_, _ = manager.ConfirmSeats(ctx, created.ID, "FL-A", 0)
			}
		}()
	}
	wg.Wait()
}

func TestRunStopsOnContextCancel(t *testing.T) {
	manager, _, _, _ := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
