package models

import "time"

type Reservation struct {
	ID         int64     `json:"id"`
	LocationID int64     `json:"location_id"`
	UserID     int64     `json:"user_id"`
	Date       string    `json:"date"` // YYYY-MM-DD
	StartHour  int       `json:"start_hour"`
	EndHour    int       `json:"end_hour"` // half-open: [start, end)
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	Rating     *int      `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReservationPatch enumerates the fields a reserving user may change.
// Status is a free-form string on purpose: the source system accepts any
// value through the update path, not just the active/cancelled pair.
type ReservationPatch struct {
	Date      *string `json:"date,omitempty"`
	StartHour *int    `json:"start_hour,omitempty"`
	EndHour   *int    `json:"end_hour,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ReservationPatch) IsEmpty() bool {
	return p.Date == nil && p.StartHour == nil && p.EndHour == nil && p.Status == nil
}

// ReservationView is a reservation row joined with its location and, for
// admin/owner listings, the reserving user's display name.
type ReservationView struct {
	Reservation
	LocationName    string `json:"location_name"`
	LocationAddress string `json:"location_address,omitempty"`
	LocationSport   string `json:"location_sport,omitempty"`
	UserDisplayName string `json:"user_display_name,omitempty"`
}

// ReservationFilter narrows role-scoped listings. LocationIDs only applies
// to owner listings. Filtered marks that the caller supplied a location set
// at all: a supplied set that parsed to nothing means "match nothing", not
// "no filter".
type ReservationFilter struct {
	LocationIDs []int64
	Filtered    bool
}
