// Package queue publishes booking lifecycle events to the message broker.
// Downstream consumers release held fares, notify travelers and feed
// analytics without querying this service.
package queue

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingExtended  = "booking.extended"
	EventBookingExpired   = "booking.expired"
	EventBookingCancelled = "booking.cancelled"
	EventPaymentRequested = "booking.payment_requested"
)

// BookingEvent is the payload for every booking lifecycle event. Type doubles
// as the routing key.
type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"booking_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	Deadline    time.Time `json:"deadline,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
