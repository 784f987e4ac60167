package models

import "time"

// Notification types emitted by the reservation lifecycle. The *_for_location
// variants go to the location owner.
const (
	NotifReservationCreated        = "reservation_created"
	NotifNewReservationForOwner    = "new_reservation_for_location"
	NotifReservationUpdated        = "reservation_updated"
	NotifReservationUpdatedOwner   = "reservation_updated_for_location"
	NotifReservationCancelled      = "reservation_cancelled"
	NotifReservationCancelledOwner = "reservation_cancelled_for_location"
)

// Notification is an append-only inbox row; only the Read flag ever changes
// after insert.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
