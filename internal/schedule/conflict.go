// Package schedule holds the slot-conflict arithmetic for hour-granularity
// reservations. Hours are half-open integer intervals, so boundary-touching
// slots (9-10 and 10-11) never conflict and no timezone handling is needed.
package schedule

import "quadra/internal/models"

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// HasConflict reports whether the requested slot collides with any active
// reservation on the same location and date. Cancelled rows and rows for
// other locations or dates are ignored.
func HasConflict(reservations []models.Reservation, locationID int64, date string, startHour, endHour int) bool {
	for _, r := range reservations {
		if r.LocationID != locationID || r.Date != date || r.Status != models.StatusActive {
			continue
		}
		if Overlaps(startHour, endHour, r.StartHour, r.EndHour) {
			return true
		}
	}
	return false
}
