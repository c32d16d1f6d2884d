// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

// EventType names a booking lifecycle transition.
type EventType string

const (
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventHoldsExpired     EventType = "holds.expired"
)

// DefaultQueueName is the durable queue booking events are routed to.
const DefaultQueueName = "seat.booking.events"

// BookingEvent is published after a booking group changes state or after
// the sweeper reclaims expired holds.  It carries enough information for
// downstream consumers to log, notify or trigger analytics without querying
// the primary database.
type BookingEvent struct {
	Type           EventType `json:"type"`
	BookingGroupID string    `json:"booking_group_id,omitempty"`
	ScheduleID     string    `json:"schedule_id,omitempty"`
	DepartureDate  string    `json:"departure_date,omitempty"`
	SeatNumbers    []string  `json:"seats,omitempty"`
	Count          int64     `json:"count"`
	OccurredAt     string    `json:"occurred_at"`
}
