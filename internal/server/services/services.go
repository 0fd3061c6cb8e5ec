// Package services contains server-side business logic: the authentication
// flows (AuthService) and administrative account management (AccountService).
//
// Every public operation returns either a result or an error classified by
// common.Kind, so transports can map failures without string matching.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	validation "github.com/go-ozzo/ozzo-validation"
)

// Messages surfaced to callers.
const (
	msgInvalidCredentials = "invalid credentials"
	msgEmailNotVerified   = "email not verified, check your inbox or request a new verification email"
	msgInvalidToken       = "invalid or expired token"
	msgStoreUnavailable   = "account store unavailable"
	msgMailFailed         = "the email could not be sent, please try again later"
	msgDuplicateEmail     = "email already registered"
	msgDuplicateUsername  = "username already taken"
	msgDuplicateAccount   = "email or username already in use"
	msgPasswordTooLong    = "password is too long"
	msgAccountNotFound    = "account not found"
)

// validationError converts ozzo-validation output into a Validation error.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return common.NewValidationError(strings.TrimSuffix(verrs.Error(), "."))
	}
	return common.NewValidationError(err.Error())
}

// storeError classifies a repository failure. Already classified errors pass
// through unchanged.
func storeError(err error) error {
	if common.KindOf(err) != common.KindUnknown {
		return err
	}
	if errors.Is(err, common.ErrorAlreadyExists) {
		return common.NewValidationError(msgDuplicateAccount)
	}
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewValidationError(msgAccountNotFound)
	}
	return common.NewDependencyError(msgStoreUnavailable, err)
}

func passwordRule(min int) validation.Rule {
	return validation.Length(min, 0).Error(fmt.Sprintf("must be at least %d characters", min))
}

// hashPassword maps hasher failures onto the error taxonomy.
func hashPassword(h *auth.PasswordHasher, password string) (string, error) {
	digest, err := h.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", common.NewValidationError(msgPasswordTooLong)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return digest, nil
}

// optionalString turns blank input into nil.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
