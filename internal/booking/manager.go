// Package booking owns the payment-session lifecycle: pricing a selection,
// counting down an absolute deadline, gating extension and payment, and
// publishing lifecycle events. There is exactly one logical writer — every
// state change is serialized through the Manager's lock, and all derived
// values are recomputed from current state rather than mutated incrementally.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/payment"
	"github.com/dharmasatrya/flightbooking/internal/queue"
	"github.com/dharmasatrya/flightbooking/internal/seatmap"
)

var (
	ErrNotPending         = errors.New("booking session is not pending payment")
	ErrDeadlinePassed     = errors.New("booking session deadline has passed")
	ErrExtendNotAllowed   = errors.New("extension requires more remaining time")
	ErrSessionClosed      = errors.New("booking session closed before payment resolved")
	ErrAlreadyClosed      = errors.New("booking session already in a terminal state")
	ErrFlightNotInSession = errors.New("flight is not part of this booking session")
)

// Config carries the session constants. 15-minute sessions, a 5-minute
// extension threshold and 15% tax are defaults, not hardcoded anywhere else.
type Config struct {
	SessionTTL      time.Duration
	ExtendThreshold time.Duration
	TaxRate         float64
	FixedFee        float64
	SeatBasePrice   float64
	Currency        string
}

func DefaultConfig() Config {
	return Config{
		SessionTTL:      15 * time.Minute,
		ExtendThreshold: 5 * time.Minute,
		TaxRate:         0.15,
		FixedFee:        25.0,
		SeatBasePrice:   30.0,
		Currency:        "USD",
	}
}

// Manager coordinates all session state changes and the expiry sweep.
type Manager struct {
	mu        sync.Mutex
	store     Store
	config    Config
	gateway   payment.Gateway
	publisher queue.Publisher
	inventory seatmap.Inventory
	now       func() time.Time
}

func NewManager(store Store, cfg Config, gateway payment.Gateway, publisher queue.Publisher, inventory seatmap.Inventory) *Manager {
	if publisher == nil {
		publisher = queue.NewNoOpPublisher()
	}
	if inventory == nil {
		inventory = seatmap.NewGenerator()
	}
	return &Manager{
		store:     store,
		config:    cfg,
		gateway:   gateway,
		publisher: publisher,
		inventory: inventory,
		now:       time.Now,
	}
}

// SetClock overrides the time source. Tests use this to drive the deadline
// without sleeping.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Create prices the selection and opens a session with the deadline set to
// now plus the configured TTL.
func (m *Manager) Create(req models.CreateBookingRequest) (Snapshot, error) {
	if err := req.Validate(); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	session := &Session{
		ID:         uuid.NewString(),
		Flights:    req.Flights,
		Passengers: req.Passengers,
		Pricing:    ComputePricing(req.Flights, len(req.Passengers), m.config.TaxRate, m.config.FixedFee, req.Insurance, m.config.Currency),
		Status:     StatusPendingPayment,
		CreatedAt:  now,
		Deadline:   now.Add(m.config.SessionTTL),
		selections: make(map[string]*seatmap.Selection),
	}

	if err := m.store.Save(session); err != nil {
		return Snapshot{}, err
	}

	m.publish(queue.EventBookingCreated, session)
	return session.snapshot(now), nil
}

// Get returns a session snapshot, expiring it first if its deadline has
// already passed. Recomputing from the stored deadline keeps remaining time
// correct even if the sweep ticker was delayed.
func (m *Manager) Get(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.expireIfDue(session)
	return session.snapshot(m.now()), nil
}

// Extend resets the deadline to now plus the TTL. It is permitted only while
// pending payment and with more than the configured threshold remaining, and
// it never re-prices.
func (m *Manager) Extend(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.expireIfDue(session)
	if session.Status != StatusPendingPayment {
		return Snapshot{}, ErrNotPending
	}

	now := m.now()
	if session.Remaining(now) <= m.config.ExtendThreshold {
		return Snapshot{}, ErrExtendNotAllowed
	}

	session.Deadline = now.Add(m.config.SessionTTL)
	m.publish(queue.EventBookingExtended, session)
	return session.snapshot(now), nil
}

// Cancel is a one-way transition available from any non-terminal state. The
// cancelled event is what releases held seats and fares downstream.
func (m *Manager) Cancel(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	if session.Status.Terminal() {
		return Snapshot{}, ErrAlreadyClosed
	}

	session.Status = StatusCancelled
	m.publish(queue.EventBookingCancelled, session)
	return session.snapshot(m.now()), nil
}

// MarkPaid records the out-of-band payment confirmation from the provider.
// It is ignored for sessions that already left pending payment.
func (m *Manager) MarkPaid(id string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.store.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	m.expireIfDue(session)
	if session.Status != StatusPendingPayment {
		return Snapshot{}, ErrNotPending
	}

	session.Status = StatusPaid
	return session.snapshot(m.now()), nil
}

// SeatMap returns the seat map for one leg of a session flight, with the
// session's current selection reflected in seat statuses. The returned map is
// a clone; later toggles do not reach into it.
func (m *Manager) SeatMap(ctx context.Context, sessionID, flightID string, legIndex int) (*seatmap.Map, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, sel, err := m.selection(ctx, sessionID, flightID, legIndex)
	if err != nil {
		return nil, err
	}
	return sel.SeatMap().Clone(), nil
}

// SeatSelectionState is returned after every seat interaction so the caller
// can re-render without a second round trip.
type SeatSelectionState struct {
	Changed     bool     `json:"changed"`
	SelectedIDs []string `json:"selected_ids"`
	LockedCabin string   `json:"locked_cabin,omitempty"`
	TotalPrice  float64  `json:"total_price"`
}

// ToggleSeat flips one seat in a leg's selection. Rejected attempts
// (occupied seat, cross-cabin pick while another cabin is locked) are
// reported as Changed=false, not as errors: they are normal interactions.
func (m *Manager) ToggleSeat(ctx context.Context, sessionID string, req models.SeatToggleRequest) (SeatSelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, sel, err := m.selection(ctx, sessionID, req.FlightID, req.LegIndex)
	if err != nil {
		return SeatSelectionState{}, err
	}
	m.expireIfDue(session)
	if session.Status != StatusPendingPayment {
		return SeatSelectionState{}, ErrNotPending
	}

	changed := sel.Toggle(req.SeatID)
	return seatState(sel, changed), nil
}

// ClearSeats empties a leg's selection, unlocking the cabin choice.
func (m *Manager) ClearSeats(ctx context.Context, sessionID, flightID string, legIndex int) (SeatSelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, sel, err := m.selection(ctx, sessionID, flightID, legIndex)
	if err != nil {
		return SeatSelectionState{}, err
	}
	if session.Status != StatusPendingPayment {
		return SeatSelectionState{}, ErrNotPending
	}

	sel.Clear()
	return seatState(sel, true), nil
}

// ConfirmSeats captures a leg's selection into the session and folds the
// seat charges into the pricing extras, restoring the total invariant.
func (m *Manager) ConfirmSeats(ctx context.Context, sessionID, flightID string, legIndex int) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, sel, err := m.selection(ctx, sessionID, flightID, legIndex)
	if err != nil {
		return Snapshot{}, err
	}
	m.expireIfDue(session)
	if session.Status != StatusPendingPayment {
		return Snapshot{}, ErrNotPending
	}

	ids, err := sel.Confirm()
	if err != nil {
		return Snapshot{}, err
	}

	if session.ConfirmedSeats == nil {
		session.ConfirmedSeats = make(map[string][]string)
	}
	session.ConfirmedSeats[legKey(flightID, legIndex)] = ids
	session.Pricing.SetExtras(session.seatExtras())
	return session.snapshot(m.now()), nil
}

// SubmitPayment assembles the billing payload and delegates to the payment
// gateway. The gateway call runs outside the lock; its result is discarded
// if the session left pending payment in the meantime (stale-response
// guard). Success returns the provider's redirect URL — the session does not
// flip to paid here. Failure keeps the session pending and consumes no
// remaining time.
func (m *Manager) SubmitPayment(ctx context.Context, sessionID string, req models.PaymentRequest) (*payment.IntentResponse, error) {
	m.mu.Lock()
	session, err := m.store.Get(sessionID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.expireIfDue(session)
	if session.Status == StatusExpired {
		m.mu.Unlock()
		return nil, ErrDeadlinePassed
	}
	if session.Status != StatusPendingPayment {
		m.mu.Unlock()
		return nil, ErrNotPending
	}

	intent := payment.IntentRequest{
		BookingID:   session.ID,
		Amount:      session.Pricing.Total,
		Currency:    session.Pricing.Currency,
		Description: fmt.Sprintf("Flight booking %s", session.ID),
		Billing:     fillBillingDefaults(req.Billing, session),
	}
	m.mu.Unlock()

	resp, err := m.gateway.CreateIntent(ctx, intent)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, getErr := m.store.Get(sessionID)
	if getErr != nil || current.Status != StatusPendingPayment {
		// The session expired or was cancelled while the request was in
		// flight; the stale result must not surface.
		return nil, ErrSessionClosed
	}
	m.publish(queue.EventPaymentRequested, current)
	return resp, nil
}

// ExpireDue sweeps every pending session whose deadline has passed. The
// transition is one-way; later ticks and extension attempts leave expired
// sessions untouched.
func (m *Manager) ExpireDue() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := 0
	for _, session := range m.store.List() {
		if m.expireIfDue(session) {
			expired++
		}
	}
	return expired
}

// Run drives the one-second expiry tick until ctx is cancelled. Cancelling
// tears the ticker down so no stray tick keeps mutating state after the
// owner is gone.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ExpireDue()
		}
	}
}

// expireIfDue applies the deadline transition in place. Caller must hold the
// lock.
func (m *Manager) expireIfDue(session *Session) bool {
	if session.Status != StatusPendingPayment {
		return false
	}
	if m.now().Before(session.Deadline) {
		return false
	}
	session.Status = StatusExpired
	m.publish(queue.EventBookingExpired, session)
	return true
}

// selection lazily builds the seat selection for one flight leg. Caller must
// hold the lock.
func (m *Manager) selection(ctx context.Context, sessionID, flightID string, legIndex int) (*Session, *seatmap.Selection, error) {
	session, err := m.store.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	offer, ok := session.offer(flightID)
	if !ok {
		return nil, nil, ErrFlightNotInSession
	}
	if legIndex < 0 || legIndex >= len(offer.Legs) {
		return nil, nil, ErrFlightNotInSession
	}

	key := legKey(flightID, legIndex)
	if session.selections == nil {
		session.selections = make(map[string]*seatmap.Selection)
	}
	if sel, ok := session.selections[key]; ok {
		return session, sel, nil
	}

	seatMap, err := m.inventory.SeatMap(ctx, flightID, legIndex, m.config.SeatBasePrice, m.config.Currency)
	if err != nil {
		return nil, nil, err
	}
	sel := seatmap.NewSelection(seatMap)
	session.selections[key] = sel
	return session, sel, nil
}

func (m *Manager) publish(eventType string, session *Session) {
	event := queue.BookingEvent{
		Type:        eventType,
		BookingID:   session.ID,
		Status:      string(session.Status),
		TotalAmount: session.Pricing.Total,
		Currency:    session.Pricing.Currency,
		Deadline:    session.Deadline,
		OccurredAt:  m.now().UTC(),
	}
	if err := m.publisher.Publish(context.Background(), event); err != nil {
		log.Printf("booking: publish %s for %s failed: %v", eventType, session.ID, err)
	}
}

func seatState(sel *seatmap.Selection, changed bool) SeatSelectionState {
	state := SeatSelectionState{
		Changed:     changed,
		SelectedIDs: sel.SelectedIDs(),
		TotalPrice:  sel.TotalPrice(),
	}
	if cabin, ok := sel.LockedCabin(); ok {
		state.LockedCabin = string(cabin)
	}
	return state
}

// fillBillingDefaults replaces missing optional billing sub-fields with
// placeholders instead of failing validation.
func fillBillingDefaults(b models.BillingDetails, session *Session) payment.Billing {
	if b.Name == "" && len(session.Passengers) > 0 {
		p := session.Passengers[0]
		b.Name = p.FirstName + " " + p.LastName
	}
	if b.Email == "" && len(session.Passengers) > 0 {
		b.Email = session.Passengers[0].Email
	}
	if b.Line1 == "" {
		b.Line1 = "N/A"
	}
	if b.City == "" {
		b.City = "Unknown"
	}
	if b.PostalCode == "" {
		b.PostalCode = "00000"
	}
	if b.Country == "" {
		b.Country = "US"
	}
	return payment.Billing{
		Name:       b.Name,
		Email:      b.Email,
		Line1:      b.Line1,
		Line2:      b.Line2,
		City:       b.City,
		State:      b.State,
		PostalCode: b.PostalCode,
		Country:    b.Country,
	}
}
