package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Actor is the authenticated caller of an account management operation.
type Actor struct {
	AccountID int64
	Role      models.Role
}

// ActorFromClaims builds an Actor from validated session claims.
func ActorFromClaims(c *auth.Claims) Actor {
	return Actor{AccountID: c.AccountID, Role: c.Role}
}

func (a Actor) canManageOthers() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleManager
}

// CreateAccountInput is an administrative account creation request.
// Accounts created this way start verified.
type CreateAccountInput struct {
	Name      string
	Username  string
	Email     string
	Password  string
	Role      string
	CompanyID *int64
}

// UpdateAccountInput replaces an account's profile. An empty Password keeps
// the current one; an empty Role keeps the current role.
type UpdateAccountInput struct {
	Name      string
	Username  string
	Email     string
	Password  string
	Role      string
	CompanyID *int64
}

// AccountService is administrative account management gated by the role
// policy in package auth.
type AccountService struct {
	tx     dbx.Transactor
	repos  repomanager.RepositoryManager
	hasher *auth.PasswordHasher
	log    logging.Logger

	minPasswordLength int
}

func NewAccountService(tx dbx.Transactor, repos repomanager.RepositoryManager, hasher *auth.PasswordHasher, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		tx:                tx,
		repos:             repos,
		hasher:            hasher,
		log:               log.With("module", "accounts"),
		minPasswordLength: cfg.MinPasswordLength,
	}
}

// List returns every account. Only admins and managers may list.
func (s *AccountService) List(ctx context.Context, actor Actor) ([]*models.Account, error) {
	if !actor.canManageOthers() {
		return nil, common.NewAuthorizationError(common.ErrForbidden)
	}
	list, err := s.repos.Accounts(s.tx.DB()).List(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// Get returns one account. Regular accounts may only read themselves.
func (s *AccountService) Get(ctx context.Context, actor Actor, id int64) (*models.Account, error) {
	if id != actor.AccountID && !actor.canManageOthers() {
		return nil, common.NewAuthorizationError(common.ErrForbidden)
	}
	a, err := s.repos.Accounts(s.tx.DB()).GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return a, nil
}

// Create adds a verified account on behalf of an admin or manager.
func (s *AccountService) Create(ctx context.Context, actor Actor, in CreateAccountInput) (*models.Account, error) {
	if !actor.canManageOthers() {
		return nil, common.NewAuthorizationError(common.ErrForbidden)
	}

	role, err := models.ParseRole(strings.TrimSpace(in.Role))
	if err != nil {
		return nil, common.NewValidationError(err.Error())
	}
	if err := auth.CanCreateWithRole(actor.Role, role); err != nil {
		s.log.Info(ctx, "account creation denied", "actor_id", actor.AccountID, "role", role.String())
		return nil, common.NewAuthorizationError(err)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, passwordRule(s.minPasswordLength)),
	); err != nil {
		return nil, validationError(err)
	}

	if err := checkUnique(ctx, s.repos, s.tx.DB(), in.Email, in.Username, 0); err != nil {
		return nil, err
	}

	digest, err := hashPassword(s.hasher, in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:          in.Name,
		Username:      optionalString(in.Username),
		Email:         in.Email,
		PasswordHash:  digest,
		Role:          role,
		EmailVerified: true,
		CompanyID:     in.CompanyID,
	}
	if _, err := s.repos.Accounts(s.tx.DB()).Create(ctx, account); err != nil {
		return nil, storeError(err)
	}

	s.log.Info(ctx, "account created", "actor_id", actor.AccountID, "account_id", account.ID, "role", role.String())
	return account, nil
}

// Update replaces the profile of account id. Regular accounts may only edit
// themselves; role changes go through auth.CanAssignRole.
func (s *AccountService) Update(ctx context.Context, actor Actor, id int64, in UpdateAccountInput) (*models.Account, error) {
	self := id == actor.AccountID
	if !self && !actor.canManageOthers() {
		return nil, common.NewAuthorizationError(common.ErrForbidden)
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, passwordRule(s.minPasswordLength)),
	); err != nil {
		return nil, validationError(err)
	}

	var requested models.Role
	if r := strings.TrimSpace(in.Role); r != "" {
		parsed, err := models.ParseRole(r)
		if err != nil {
			return nil, common.NewValidationError(err.Error())
		}
		requested = parsed
	}

	var digest string
	if in.Password != "" {
		d, err := hashPassword(s.hasher, in.Password)
		if err != nil {
			return nil, err
		}
		digest = d
	}

	var updated *models.Account
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		accounts := s.repos.Accounts(tx)

		if err := accounts.LockForUpdate(ctx, id); err != nil {
			return err
		}
		current, err := accounts.GetByID(ctx, id)
		if err != nil {
			return err
		}

		role := current.Role
		if requested != "" {
			role = requested
		}
		if err := auth.CanAssignRole(actor.Role, role, self, current.Role); err != nil {
			return common.NewAuthorizationError(err)
		}

		if err := checkUnique(ctx, s.repos, tx, in.Email, in.Username, id); err != nil {
			return err
		}

		current.Name = in.Name
		current.Email = in.Email
		current.Username = optionalString(in.Username)
		current.Role = role
		current.CompanyID = in.CompanyID
		if digest != "" {
			current.PasswordHash = digest
		}
		if err := accounts.Update(ctx, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		if common.KindOf(err) == common.KindAuthorization {
			s.log.Info(ctx, "account update denied", "actor_id", actor.AccountID, "account_id", id, "reason", err.Error())
		}
		return nil, storeError(err)
	}

	s.log.Info(ctx, "account updated", "actor_id", actor.AccountID, "account_id", id, "role", updated.Role.String())
	return updated, nil
}

// Delete removes an account and its email tokens. Admin only; an admin
// cannot delete their own account.
func (s *AccountService) Delete(ctx context.Context, actor Actor, id int64) error {
	if actor.Role != models.RoleAdmin {
		return common.NewAuthorizationError(common.ErrForbidden)
	}
	if id == actor.AccountID {
		return common.NewValidationError("cannot delete your own account")
	}

	if err := s.repos.Accounts(s.tx.DB()).Delete(ctx, id); err != nil {
		return storeError(err)
	}

	s.log.Info(ctx, "account deleted", "actor_id", actor.AccountID, "account_id", id)
	return nil
}
