package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

type EmailTokenRepository struct {
	s *Store
}

func (r *EmailTokenRepository) Replace(ctx context.Context, t *models.EmailToken) error {
	s := r.s
	defer s.lock(ctx)()

	if _, ok := s.accounts[t.AccountID]; !ok {
		return common.ErrorNotFound
	}
	if _, dup := s.tokens[t.Token]; dup {
		return common.ErrorAlreadyExists
	}

	for k, old := range s.tokens {
		if old.AccountID == t.AccountID && old.Purpose == t.Purpose && !old.Used {
			old.Used = true
			s.tokens[k] = old
		}
	}

	s.nextTokenID++
	t.ID = s.nextTokenID
	t.CreatedAt = s.now()
	t.Used = false
	s.tokens[t.Token] = *t
	return nil
}

func (r *EmailTokenRepository) Consume(ctx context.Context, token string, purpose models.Purpose, now time.Time) (int64, error) {
	s := r.s
	defer s.lock(ctx)()

	t, ok := s.tokens[token]
	if !ok || t.Purpose != purpose || !t.Usable(now) {
		return 0, common.ErrorNotFound
	}
	t.Used = true
	s.tokens[token] = t
	return t.AccountID, nil
}

func (r *EmailTokenRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s := r.s
	defer s.lock(ctx)()

	var n int64
	for k, t := range s.tokens {
		if !t.ExpiresAt.After(cutoff) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}

// Usable counts tokens of (accountID, purpose) that could still be consumed at now.
func (r *EmailTokenRepository) Usable(accountID int64, purpose models.Purpose, now time.Time) int {
	s := r.s
	defer s.lock(context.Background())()

	n := 0
	for _, t := range s.tokens {
		if t.AccountID == accountID && t.Purpose == purpose && t.Usable(now) {
			n++
		}
	}
	return n
}
