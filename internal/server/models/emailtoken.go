package models

import "time"

// EmailToken is a single-use, expiring token mailed to an account owner.
type EmailToken struct {
	ID        int64
	AccountID int64
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Usable reports whether the token can still be consumed at now.
func (t *EmailToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
