// Package emailtokens declares the persistence contract for single-use
// email tokens and its PostgreSQL implementation.
package emailtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

// Repository stores email tokens.
type Repository interface {
	// Replace marks every unused token of (t.AccountID, t.Purpose) as used and
	// inserts t, filling its ID and CreatedAt. Callers run it inside a
	// transaction that already holds the account lock.
	Replace(ctx context.Context, t *models.EmailToken) error

	// Consume flags an unused token of the given purpose that is still valid
	// at now and returns its owner. Any miss is common.ErrorNotFound.
	Consume(ctx context.Context, token string, purpose models.Purpose, now time.Time) (int64, error)

	// DeleteExpired removes tokens whose expiry is at or before the cutoff and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
