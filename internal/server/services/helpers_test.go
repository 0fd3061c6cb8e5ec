package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/logging"
	"github.com/dmitrijs2005/medmind-auth/internal/server/auth"
	"github.com/dmitrijs2005/medmind-auth/internal/server/config"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	email, name, token string
}

type fakeMailer struct {
	mu            sync.Mutex
	err           error
	verifications []sentMail
	recoveries    []sentMail
}

func (m *fakeMailer) SendVerification(_ context.Context, email, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.verifications = append(m.verifications, sentMail{email, name, token})
	return nil
}

func (m *fakeMailer) SendRecovery(_ context.Context, email, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recoveries = append(m.recoveries, sentMail{email, name, token})
	return nil
}

func (m *fakeMailer) lastVerification(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verifications, "no verification email sent")
	return m.verifications[len(m.verifications)-1]
}

func (m *fakeMailer) lastRecovery(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.recoveries, "no recovery email sent")
	return m.recoveries[len(m.recoveries)-1]
}

type fixture struct {
	store    *memory.Store
	clock    *testClock
	mail     *fakeMailer
	hasher   *auth.PasswordHasher
	tokens   *EmailTokenStore
	auth     *AuthService
	accounts *AccountService
	cfg      *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	clock := &testClock{t: t0}
	store := memory.NewStore(clock.Now)
	repos := repomanager.NewMemoryRepositoryManager(store)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	codec, err := auth.NewClaimsCodec("test-secret", auth.WithClock(clock.Now), auth.WithTTL(cfg.SessionTTL))
	require.NoError(t, err)

	log := logging.Nop{}
	tokens := NewEmailTokenStore(store, repos, clock.Now, log)
	mail := &fakeMailer{}

	return &fixture{
		store:    store,
		clock:    clock,
		mail:     mail,
		hasher:   hasher,
		tokens:   tokens,
		auth:     NewAuthService(store, repos, hasher, codec, tokens, mail, cfg, log),
		accounts: NewAccountService(store, repos, hasher, cfg, log),
		cfg:      cfg,
	}
}

// seed inserts an account directly into the store.
func (f *fixture) seed(t *testing.T, name, username, email, password string, role models.Role, verified bool) *models.Account {
	t.Helper()
	digest, err := f.hasher.Hash(password)
	require.NoError(t, err)
	a, err := f.store.Accounts().Create(context.Background(), &models.Account{
		Name:          name,
		Username:      optionalString(username),
		Email:         email,
		PasswordHash:  digest,
		Role:          role,
		EmailVerified: verified,
	})
	require.NoError(t, err)
	return a
}

func requireKind(t *testing.T, err error, kind common.Kind) {
	t.Helper()
	require.Error(t, err)
	if got := common.KindOf(err); got != kind {
		t.Fatalf("kind: got %s want %s (err=%v)", got, kind, err)
	}
}

var errSMTPDown = errors.New("smtp down")
