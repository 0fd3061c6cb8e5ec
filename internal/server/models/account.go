package models

import "time"

// Account is a stored identity. PasswordHash is a bcrypt digest, never the
// plaintext. Username and CompanyID are optional.
type Account struct {
	ID            int64
	Name          string
	Username      *string
	Email         string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	CompanyID     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
