package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/mailer"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// RegisterInput is a self-service sign-up request. Username is optional.
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// RegisterResult carries the new account. MailWarning is set when the
// verification email could not be dispatched; the account and its token
// exist regardless.
type RegisterResult struct {
	Account     *models.Account
	MailWarning string
}

// LoginResult is a successful login.
type LoginResult struct {
	Token   string
	Account *models.Account
}

// AuthService implements registration, login, email verification and
// password recovery on top of the account and email token stores.
type AuthService struct {
	tx     dbx.Transactor
	repos  repomanager.RepositoryManager
	hasher *auth.PasswordHasher
	codec  *auth.ClaimsCodec
	tokens *EmailTokenStore
	mailer mailer.Mailer
	log    logging.Logger

	verificationTTL   time.Duration
	resetTTL          time.Duration
	minPasswordLength int

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	tx dbx.Transactor,
	repos repomanager.RepositoryManager,
	hasher *auth.PasswordHasher,
	codec *auth.ClaimsCodec,
	tokens *EmailTokenStore,
	m mailer.Mailer,
	cfg *config.Config,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		tx:                tx,
		repos:             repos,
		hasher:            hasher,
		codec:             codec,
		tokens:            tokens,
		mailer:            m,
		log:               log.With("module", "auth"),
		verificationTTL:   cfg.VerificationTokenTTL,
		resetTTL:          cfg.ResetTokenTTL,
		minPasswordLength: cfg.MinPasswordLength,
	}
}

// Register creates an unverified regular account and mails a verification
// link. A mail failure is reported in MailWarning, never as an error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
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

	if err := s.ensureUnique(ctx, in.Email, in.Username, 0); err != nil {
		return nil, err
	}

	digest, err := hashPassword(s.hasher, in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:         in.Name,
		Username:     optionalString(in.Username),
		Email:        in.Email,
		PasswordHash: digest,
		Role:         models.RoleRegular,
	}

	var token string
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Accounts(tx).Create(ctx, account); err != nil {
			return err
		}
		token, err = s.tokens.IssueIn(ctx, tx, account.ID, models.PurposeEmailVerification, s.verificationTTL)
		return err
	})
	if err != nil {
		return nil, storeError(err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID)

	res := &RegisterResult{Account: account}
	res.MailWarning = s.dispatch(ctx, account, func(ctx context.Context) error {
		return s.mailer.SendVerification(ctx, account.Email, account.Name, token)
	})
	return res, nil
}

// ensureUnique rejects an email or username already owned by an account
// other than exceptID.
func (s *AuthService) ensureUnique(ctx context.Context, email, username string, exceptID int64) error {
	return checkUnique(ctx, s.repos, s.tx.DB(), email, username, exceptID)
}

func checkUnique(ctx context.Context, repos repomanager.RepositoryManager, db dbx.DBTX, email, username string, exceptID int64) error {
	accounts := repos.Accounts(db)

	existing, err := accounts.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != exceptID:
		return common.NewValidationError(msgDuplicateEmail)
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return storeError(err)
	}

	if username == "" {
		return nil
	}
	existing, err = accounts.GetByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != exceptID:
		return common.NewValidationError(msgDuplicateUsername)
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return storeError(err)
	}
	return nil
}

// Login authenticates by username or email. Unknown identifiers and wrong
// passwords share one generic error. An unverified non-admin account is
// reported explicitly, but only after the password has been proven.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, common.NewValidationError("identifier and password are required")
	}

	account, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn comparable CPU so timing does not reveal unknown identifiers
			s.hasher.Verify(password, s.dummy())
			return nil, common.NewAuthenticationError(msgInvalidCredentials, common.ErrorUnauthorized)
		}
		return nil, storeError(err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		s.log.Info(ctx, "login rejected", "account_id", account.ID, "reason", "bad_password")
		return nil, common.NewAuthenticationError(msgInvalidCredentials, common.ErrorUnauthorized)
	}

	if !account.EmailVerified && account.Role != models.RoleAdmin {
		s.log.Info(ctx, "login rejected", "account_id", account.ID, "reason", "unverified")
		return nil, common.NewAuthenticationError(msgEmailNotVerified, common.ErrorEmailNotVerified)
	}

	token, err := s.codec.Issue(account)
	if err != nil {
		return nil, common.NewDependencyError("could not issue session", err)
	}

	s.log.Info(ctx, "login succeeded", "account_id", account.ID, "role", account.Role.String())
	return &LoginResult{Token: token, Account: account}, nil
}

// findByIdentifier looks the identifier up as a username first, then as an email.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	accounts := s.repos.Accounts(s.tx.DB())

	a, err := accounts.GetByUsername(ctx, identifier)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return accounts.GetByEmail(ctx, identifier)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.hasher.Hash("medmind-timing-equalizer")
	})
	return s.dummyDigest
}

// VerifyEmail consumes a verification token and marks its account verified
// in the same transaction.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.Account, error) {
	id, err := s.tokens.ConsumeAndApply(ctx, token, models.PurposeEmailVerification,
		func(ctx context.Context, tx dbx.DBTX, accountID int64) error {
			return s.repos.Accounts(tx).MarkVerified(ctx, accountID)
		})
	if err != nil {
		return nil, s.tokenError(ctx, err)
	}

	account, err := s.repos.Accounts(s.tx.DB()).GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}

	s.log.Info(ctx, "email verified", "account_id", id)
	return account, nil
}

// ResendVerification mails a fresh verification link to an unverified
// account. Unknown, already verified and undeliverable addresses all get the
// same nil result.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	return s.mailFlow(ctx, email, func(a *models.Account) bool { return !a.EmailVerified },
		models.PurposeEmailVerification, s.verificationTTL, s.mailer.SendVerification)
}

// ForgotPassword mails a recovery link. Unknown and undeliverable addresses
// get the same nil result.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.mailFlow(ctx, email, func(*models.Account) bool { return true },
		models.PurposePasswordReset, s.resetTTL, s.mailer.SendRecovery)
}

type sendFunc func(ctx context.Context, email, name, token string) error

func (s *AuthService) mailFlow(ctx context.Context, email string, eligible func(*models.Account) bool,
	purpose models.Purpose, ttl time.Duration, send sendFunc) error {
	email = strings.TrimSpace(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return common.NewValidationError("email: " + err.Error())
	}

	account, err := s.repos.Accounts(s.tx.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Info(ctx, "email flow for unknown address", "purpose", purpose.String())
			return nil
		}
		return storeError(err)
	}
	if !eligible(account) {
		return nil
	}

	token, err := s.tokens.Issue(ctx, account.ID, purpose, ttl)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// account deleted between lookup and issue
			return nil
		}
		return storeError(err)
	}

	// failures are only logged: every address gets the same answer
	s.dispatch(ctx, account, func(ctx context.Context) error {
		return send(ctx, account.Email, account.Name, token)
	})
	return nil
}

// ResetPassword consumes a recovery token and replaces the password hash in
// the same transaction. Verification state is left untouched.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.Validate(newPassword, validation.Required, passwordRule(s.minPasswordLength)); err != nil {
		return common.NewValidationError("password: " + err.Error())
	}

	digest, err := hashPassword(s.hasher, newPassword)
	if err != nil {
		return err
	}

	id, err := s.tokens.ConsumeAndApply(ctx, token, models.PurposePasswordReset,
		func(ctx context.Context, tx dbx.DBTX, accountID int64) error {
			return s.repos.Accounts(tx).UpdatePassword(ctx, accountID, digest)
		})
	if err != nil {
		return s.tokenError(ctx, err)
	}

	s.log.Info(ctx, "password reset", "account_id", id)
	return nil
}

// Authenticate validates a bearer credential taken from a header or cookie.
// The rejection reason stays in the error chain for errors.Is.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*auth.Claims, error) {
	claims, err := s.codec.Validate(bearer)
	if err != nil {
		s.log.Debug(ctx, "bearer rejected", "reason", err.Error())
		return nil, common.NewAuthenticationError("invalid or expired session", err)
	}
	return claims, nil
}

func (s *AuthService) tokenError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrInvalidEmailToken) {
		return common.NewAuthenticationError(msgInvalidToken, err)
	}
	return storeError(err)
}

// dispatch sends an email and converts a failure into a warning string.
func (s *AuthService) dispatch(ctx context.Context, account *models.Account, send func(context.Context) error) string {
	if err := send(ctx); err != nil {
		s.log.Warn(ctx, "email dispatch failed", "account_id", account.ID, "error", err.Error())
		return msgMailFailed
	}
	return ""
}
