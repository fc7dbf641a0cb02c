package model

import "time"

// User roles as reported by the backend.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

// User account statuses.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
)

// User is an account record as returned by the management API.
// The server never includes credential fields in responses.
type User struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`

	// FullName is the user's display name.
	FullName string `json:"fullName"`

	// Email is the unique contact address.
	Email string `json:"email"`

	// Username is the unique login name.
	Username string `json:"username"`

	// PhoneNumber is an optional contact number (digits only).
	PhoneNumber string `json:"phoneNumber,omitempty"`

	// Role is one of the Role* constants.
	Role string `json:"role"`

	// Status is one of the UserStatus* constants.
	Status string `json:"status"`

	// Department and Position are optional organizational fields.
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`

	// Address is an optional postal address.
	Address string `json:"address,omitempty"`

	// CreatedDate is when the account was created on the server.
	CreatedDate time.Time `json:"createdDate"`
}
