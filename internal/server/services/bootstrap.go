package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
)

// EnsureBootstrapAdmin creates the configured administrator when no account
// with its email exists yet. It reports whether an account was created.
// An existing account is left untouched.
func EnsureBootstrapAdmin(ctx context.Context, tx dbx.Transactor, repos repomanager.RepositoryManager,
	hasher *auth.PasswordHasher, admin config.BootstrapAdmin, log logging.Logger) (bool, error) {
	email := strings.TrimSpace(admin.Email)
	if email == "" || admin.Password == "" {
		log.Info(ctx, "bootstrap admin not configured")
		return false, nil
	}

	accounts := repos.Accounts(tx.DB())
	_, err := accounts.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return false, storeError(err)
	}

	digest, err := hashPassword(hasher, admin.Password)
	if err != nil {
		return false, err
	}

	a := &models.Account{
		Name:          admin.Name,
		Username:      optionalString(admin.Username),
		Email:         email,
		PasswordHash:  digest,
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}
	if _, err := accounts.Create(ctx, a); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			// another instance won the race, or the username is taken
			log.Warn(ctx, "bootstrap admin not created", "error", err.Error())
			return false, nil
		}
		return false, storeError(err)
	}

	log.Warn(ctx, "bootstrap admin created, change its password", "account_id", a.ID, "email", email)
	return true, nil
}
