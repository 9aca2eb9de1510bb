package models

import "time"

type EventType string

const (
	EventBookingCompleted      EventType = "booking.completed"
	EventVerificationCompleted EventType = "verification.completed"
	EventPropertyPosted        EventType = "property.posted"
)

// Event is emitted when a wizard completes and is applied to the store asynchronously
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`

	Booking    *Booking  `json:"booking,omitempty"`
	Property   *Property `json:"property,omitempty"`
	NINLastTwo string    `json:"nin_last_two,omitempty"`
}
