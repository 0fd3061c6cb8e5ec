// Package accounts declares the account directory contract and its
// PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

// Repository stores accounts. Lookups return common.ErrorNotFound when no
// row matches; writes that collide with a unique email or username return
// common.ErrorAlreadyExists.
type Repository interface {
	// Create inserts a and fills its ID and timestamps.
	Create(ctx context.Context, a *models.Account) (*models.Account, error)

	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)

	// Update overwrites every mutable column of a.
	Update(ctx context.Context, a *models.Account) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	MarkVerified(ctx context.Context, id int64) error

	// LockForUpdate takes a row lock on the account for the rest of the
	// current transaction.
	LockForUpdate(ctx context.Context, id int64) error

	Delete(ctx context.Context, id int64) error
}
