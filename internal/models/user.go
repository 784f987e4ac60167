package models

import "time"

// Roles injected by the authentication gateway. The core trusts them verbatim.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

type User struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Identity is the caller identity extracted from trusted headers.
type Identity struct {
	UserID      int64
	Role        string
	DisplayName string
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }
