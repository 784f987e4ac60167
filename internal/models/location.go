package models

import "time"

// Approval states for a location. A rejected location is deleted outright,
// so no "rejected" value exists.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
)

type Location struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Address      string    `json:"address"`
	Sport        string    `json:"sport"`
	HourlyRate   float64   `json:"hourly_rate"`
	Availability string    `json:"availability,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Photos       []string  `json:"photos"`
	Approval     string    `json:"approval_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LocationFields carries the owner-editable part of a location. Used both for
// create and update so storage never sees an open-ended field bag.
type LocationFields struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Address      string   `json:"address"`
	Sport        string   `json:"sport"`
	HourlyRate   float64  `json:"hourly_rate"`
	Availability string   `json:"availability"`
	Phone        string   `json:"phone"`
	Photos       []string `json:"photos"`
}

// Validate reports the first missing required field.
func (f LocationFields) Validate() error {
	switch {
	case f.Name == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case f.Address == "":
		return &ValidationError{Field: "address", Reason: "is required"}
	case f.Sport == "":
		return &ValidationError{Field: "sport", Reason: "is required"}
	case f.HourlyRate <= 0:
		return &ValidationError{Field: "hourly_rate", Reason: "must be positive"}
	}
	return nil
}
