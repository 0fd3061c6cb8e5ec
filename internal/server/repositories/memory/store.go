// Package memory is an in-process twin of the Postgres repositories. WithinTx
// serializes units of work and restores a snapshot when one fails; repository
// calls made outside WithinTx run as their own single-statement transaction.
// It backs development runs and service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/timex"
)

type txKey struct{}

type Store struct {
	// txMu is held for a whole unit of work; mu guards the maps.
	// Lock order is txMu then mu.
	txMu sync.Mutex
	mu   sync.Mutex

	now timex.Clock

	nextAccountID int64
	nextTokenID   int64
	accounts      map[int64]models.Account
	tokens        map[string]models.EmailToken
}

// NewStore returns an empty store using clock for created/updated stamps.
// A nil clock means time.Now.
func NewStore(clock timex.Clock) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		now:      clock,
		accounts: make(map[int64]models.Account),
		tokens:   make(map[string]models.EmailToken),
	}
}

// DB returns nil: memory repositories ignore the handle.
func (s *Store) DB() dbx.DBTX { return nil }

// WithinTx runs fn with exclusive access to the store. Any error from fn
// rolls every change back. Not reentrant.
func (s *Store) WithinTx(ctx context.Context, fn dbx.TxFunc) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s), nil)
}

// lock acquires the store for one repository call. Inside WithinTx txMu is
// already held; anywhere else the call takes it, so it neither interleaves
// with an open unit of work nor sees its uncommitted changes.
func (s *Store) lock(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*Store); owner == s {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type snapshot struct {
	nextAccountID int64
	nextTokenID   int64
	accounts      map[int64]models.Account
	tokens        map[string]models.EmailToken
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		nextAccountID: s.nextAccountID,
		nextTokenID:   s.nextTokenID,
		accounts:      make(map[int64]models.Account, len(s.accounts)),
		tokens:        make(map[string]models.EmailToken, len(s.tokens)),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.tokens {
		snap.tokens[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID = snap.nextAccountID
	s.nextTokenID = snap.nextTokenID
	s.accounts = snap.accounts
	s.tokens = snap.tokens
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

// EmailTokens returns the email token repository view of the store.
func (s *Store) EmailTokens() *EmailTokenRepository { return &EmailTokenRepository{s: s} }
