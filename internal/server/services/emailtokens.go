package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medmind-auth/internal/timex"
)

// emailTokenBytes is the entropy of an email token (hex encoded: 64 chars).
const emailTokenBytes = 32

// ApplyFunc runs inside the consuming transaction with the token's owner.
// An error rolls the consumption back.
type ApplyFunc func(ctx context.Context, tx dbx.DBTX, accountID int64) error

// EmailTokenStore issues and consumes single-use email tokens.
//
// Issue invalidates every outstanding token of the same purpose for the
// account and inserts the new one under a row lock on the account, so at
// most one unused token per (account, purpose) is ever visible. Consume is a
// single conditional update: concurrent callers racing on one token see
// exactly one success.
type EmailTokenStore struct {
	tx       dbx.Transactor
	repos    repomanager.RepositoryManager
	now      timex.Clock
	newToken func() (string, error)
	log      logging.Logger
}

// NewEmailTokenStore builds the store; a nil clock means time.Now.
func NewEmailTokenStore(tx dbx.Transactor, repos repomanager.RepositoryManager, clock timex.Clock, log logging.Logger) *EmailTokenStore {
	if clock == nil {
		clock = time.Now
	}
	return &EmailTokenStore{
		tx:    tx,
		repos: repos,
		now:   clock,
		newToken: func() (string, error) {
			return common.MakeRandHexString(emailTokenBytes)
		},
		log: log.With("module", "emailtokens"),
	}
}

// Issue mints a token for accountID valid for ttl in its own transaction.
func (s *EmailTokenStore) Issue(ctx context.Context, accountID int64, purpose models.Purpose, ttl time.Duration) (string, error) {
	var token string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		token, err = s.IssueIn(ctx, tx, accountID, purpose, ttl)
		return err
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// IssueIn is Issue for callers that already run a transaction (tx).
func (s *EmailTokenStore) IssueIn(ctx context.Context, tx dbx.DBTX, accountID int64, purpose models.Purpose, ttl time.Duration) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("issue email token: unknown purpose %q", purpose)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("issue email token: non-positive ttl %s", ttl)
	}

	token, err := s.newToken()
	if err != nil {
		return "", fmt.Errorf("issue email token: %w", err)
	}

	if err := s.repos.Accounts(tx).LockForUpdate(ctx, accountID); err != nil {
		return "", err
	}

	rec := &models.EmailToken{
		AccountID: accountID,
		Token:     token,
		Purpose:   purpose,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.repos.EmailTokens(tx).Replace(ctx, rec); err != nil {
		return "", err
	}

	s.log.Debug(ctx, "email token issued", "account_id", accountID, "purpose", purpose.String(), "token", common.ShortToken(token))
	return token, nil
}

// Consume marks the token used and returns its owner. Wrong token, wrong
// purpose, already used and expired all yield common.ErrInvalidEmailToken.
func (s *EmailTokenStore) Consume(ctx context.Context, token string, purpose models.Purpose) (int64, error) {
	return s.ConsumeAndApply(ctx, token, purpose, nil)
}

// ConsumeAndApply consumes the token and runs apply in the same transaction,
// so the token is spent if and only if its effect is committed.
func (s *EmailTokenStore) ConsumeAndApply(ctx context.Context, token string, purpose models.Purpose, apply ApplyFunc) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" || !purpose.Valid() {
		return 0, common.ErrInvalidEmailToken
	}

	var accountID int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repos.EmailTokens(tx).Consume(ctx, token, purpose, s.now())
		if err != nil {
			return err
		}
		if apply != nil {
			if err := apply(ctx, tx, id); err != nil {
				return err
			}
		}
		accountID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrInvalidEmailToken
		}
		return 0, err
	}

	s.log.Debug(ctx, "email token consumed", "account_id", accountID, "purpose", purpose.String(), "token", common.ShortToken(token))
	return accountID, nil
}

// PurgeExpired deletes tokens that expired at or before now.
func (s *EmailTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repos.EmailTokens(s.tx.DB()).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "expired email tokens purged", "count", n)
	return n, nil
}
