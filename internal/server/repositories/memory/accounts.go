package memory

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

type AccountRepository struct {
	s *Store
}

// clone detaches the optional fields so callers cannot mutate stored state.
func clone(a models.Account) *models.Account {
	if a.Username != nil {
		u := *a.Username
		a.Username = &u
	}
	if a.CompanyID != nil {
		c := *a.CompanyID
		a.CompanyID = &c
	}
	return &a
}

// conflicts reports whether another account already owns a's email or username.
func (s *Store) conflicts(a *models.Account) bool {
	for id, other := range s.accounts {
		if id == a.ID {
			continue
		}
		if other.Email == a.Email {
			return true
		}
		if a.Username != nil && other.Username != nil && *other.Username == *a.Username {
			return true
		}
	}
	return false
}

func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	s := r.s
	defer s.lock(ctx)()

	a.ID = 0
	if s.conflicts(a) {
		return nil, common.ErrorAlreadyExists
	}

	s.nextAccountID++
	a.ID = s.nextAccountID
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt
	s.accounts[a.ID] = *clone(*a)
	return a, nil
}

func (r *AccountRepository) find(ctx context.Context, match func(models.Account) bool) (*models.Account, error) {
	s := r.s
	defer s.lock(ctx)()

	for _, a := range s.accounts {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.find(ctx, func(a models.Account) bool { return a.ID == id })
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.find(ctx, func(a models.Account) bool { return a.Email == email })
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.find(ctx, func(a models.Account) bool { return a.Username != nil && *a.Username == username })
}

func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	s := r.s
	defer s.lock(ctx)()

	out := make([]*models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *AccountRepository) mutate(ctx context.Context, id int64, fn func(*models.Account) error) error {
	s := r.s
	defer s.lock(ctx)()

	a, ok := s.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	if err := fn(&a); err != nil {
		return err
	}
	a.UpdatedAt = s.now()
	s.accounts[id] = *clone(a)
	return nil
}

func (r *AccountRepository) Update(ctx context.Context, a *models.Account) error {
	return r.mutate(ctx, a.ID, func(cur *models.Account) error {
		if r.s.conflicts(a) {
			return common.ErrorAlreadyExists
		}
		created := cur.CreatedAt
		*cur = *a
		cur.CreatedAt = created
		return nil
	})
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.mutate(ctx, id, func(cur *models.Account) error {
		cur.PasswordHash = passwordHash
		return nil
	})
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id int64) error {
	return r.mutate(ctx, id, func(cur *models.Account) error {
		cur.EmailVerified = true
		return nil
	})
}

// LockForUpdate only checks existence; WithinTx already serializes units of work.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) error {
	s := r.s
	defer s.lock(ctx)()

	if _, ok := s.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the account and, like the foreign key cascade, its tokens.
func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	s := r.s
	defer s.lock(ctx)()

	if _, ok := s.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(s.accounts, id)
	for k, t := range s.tokens {
		if t.AccountID == id {
			delete(s.tokens, k)
		}
	}
	return nil
}
