package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/dmitrijs2005/medmind-auth/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newStoreWithAccount(t *testing.T) (*Store, *models.Account) {
	t.Helper()
	s := NewStore(timex.Frozen(t0))
	a, err := s.Accounts().Create(context.Background(), &models.Account{
		Name: "Ana", Email: "a@b.com", PasswordHash: "h", Role: models.RoleRegular,
	})
	require.NoError(t, err)
	return s, a
}

func token(accountID int64, value string, p models.Purpose, exp time.Time) *models.EmailToken {
	return &models.EmailToken{AccountID: accountID, Token: value, Purpose: p, ExpiresAt: exp}
}

func TestAccounts_CreateAndLookups(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.Accounts()

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, t0, a.CreatedAt)

	got, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	_, err = repo.GetByUsername(ctx, "ana")
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(ctx, 99)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAccounts_UniqueEmailAndUsername(t *testing.T) {
	s, _ := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.Accounts()

	_, err := repo.Create(ctx, &models.Account{Name: "B", Email: "a@b.com", Role: models.RoleRegular})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	u := "bob"
	bob, err := repo.Create(ctx, &models.Account{Name: "Bob", Username: &u, Email: "bob@b.com", Role: models.RoleRegular})
	require.NoError(t, err)

	u2 := "bob"
	_, err = repo.Create(ctx, &models.Account{Name: "Bob2", Username: &u2, Email: "bob2@b.com", Role: models.RoleRegular})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	// updating an account with its own username is not a conflict
	bob.Name = "Robert"
	require.NoError(t, repo.Update(ctx, bob))
}

func TestAccounts_ReturnedValuesAreDetached(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()

	a.Name = "mutated"
	got, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestAccounts_ListIsOrdered(t *testing.T) {
	s, _ := newStoreWithAccount(t)
	ctx := context.Background()
	for _, e := range []string{"c@b.com", "d@b.com"} {
		_, err := s.Accounts().Create(ctx, &models.Account{Name: e, Email: e, Role: models.RoleRegular})
		require.NoError(t, err)
	}

	list, err := s.Accounts().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := range list {
		assert.Equal(t, int64(i+1), list[i].ID)
	}
}

func TestEmailTokens_ReplaceLeavesOneUsable(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.EmailTokens()
	exp := t0.Add(time.Hour)

	require.NoError(t, repo.Replace(ctx, token(a.ID, "first", models.PurposePasswordReset, exp)))
	require.NoError(t, repo.Replace(ctx, token(a.ID, "verify", models.PurposeEmailVerification, exp)))
	require.NoError(t, repo.Replace(ctx, token(a.ID, "second", models.PurposePasswordReset, exp)))

	assert.Equal(t, 1, repo.Usable(a.ID, models.PurposePasswordReset, t0))
	assert.Equal(t, 1, repo.Usable(a.ID, models.PurposeEmailVerification, t0), "other purposes are untouched")

	_, err := repo.Consume(ctx, "first", models.PurposePasswordReset, t0)
	require.ErrorIs(t, err, common.ErrorNotFound)

	id, err := repo.Consume(ctx, "second", models.PurposePasswordReset, t0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)
}

func TestEmailTokens_ConsumeMisses(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.EmailTokens()

	require.NoError(t, repo.Replace(ctx, token(a.ID, "tok", models.PurposeEmailVerification, t0.Add(time.Hour))))

	_, err := repo.Consume(ctx, "tok", models.PurposePasswordReset, t0)
	require.ErrorIs(t, err, common.ErrorNotFound, "wrong purpose")

	_, err = repo.Consume(ctx, "tok", models.PurposeEmailVerification, t0.Add(time.Hour))
	require.ErrorIs(t, err, common.ErrorNotFound, "expired")

	_, err = repo.Consume(ctx, "nope", models.PurposeEmailVerification, t0)
	require.ErrorIs(t, err, common.ErrorNotFound, "unknown")

	_, err = repo.Consume(ctx, "tok", models.PurposeEmailVerification, t0)
	require.NoError(t, err)

	_, err = repo.Consume(ctx, "tok", models.PurposeEmailVerification, t0)
	require.ErrorIs(t, err, common.ErrorNotFound, "already used")
}

func TestEmailTokens_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.EmailTokens()
	require.NoError(t, repo.Replace(ctx, token(a.ID, "race", models.PurposePasswordReset, t0.Add(time.Hour))))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Consume(ctx, "race", models.PurposePasswordReset, t0); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestEmailTokens_ReplaceForMissingAccount(t *testing.T) {
	s := NewStore(nil)
	err := s.EmailTokens().Replace(context.Background(), token(42, "x", models.PurposePasswordReset, time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEmailTokens_DeleteAccountOrphansFailSafely(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	require.NoError(t, s.EmailTokens().Replace(ctx, token(a.ID, "tok", models.PurposePasswordReset, t0.Add(time.Hour))))

	require.NoError(t, s.Accounts().Delete(ctx, a.ID))

	_, err := s.EmailTokens().Consume(ctx, "tok", models.PurposePasswordReset, t0)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestEmailTokens_DeleteExpired(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	repo := s.EmailTokens()

	require.NoError(t, repo.Replace(ctx, token(a.ID, "old", models.PurposePasswordReset, t0)))
	require.NoError(t, repo.Replace(ctx, token(a.ID, "new", models.PurposeEmailVerification, t0.Add(time.Hour))))

	n, err := repo.DeleteExpired(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()
	require.NoError(t, s.EmailTokens().Replace(ctx, token(a.ID, "tok", models.PurposeEmailVerification, t0.Add(time.Hour))))

	err := s.WithinTx(ctx, func(ctx context.Context, _ dbx.DBTX) error {
		if _, err := s.EmailTokens().Consume(ctx, "tok", models.PurposeEmailVerification, t0); err != nil {
			return err
		}
		return errors.New("mark verified failed")
	})
	require.Error(t, err)

	// token is still usable because the unit of work was rolled back
	id, err := s.EmailTokens().Consume(ctx, "tok", models.PurposeEmailVerification, t0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, id)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s, a := newStoreWithAccount(t)
	ctx := context.Background()

	require.NoError(t, s.WithinTx(ctx, func(ctx context.Context, _ dbx.DBTX) error {
		return s.Accounts().MarkVerified(ctx, a.ID)
	}))

	got, err := s.Accounts().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
}

func TestStore_ImplementsTransactor(t *testing.T) {
	var _ dbx.Transactor = NewStore(nil)
}

func TestWithinTx_RollbackKeepsStandaloneWrites(t *testing.T) {
	s, first := newStoreWithAccount(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithinTx(ctx, func(ctx context.Context, _ dbx.DBTX) error {
			if err := s.Accounts().MarkVerified(ctx, first.ID); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("denied")
		})
	}()
	<-entered

	created := make(chan error, 1)
	go func() {
		_, err := s.Accounts().Create(ctx, &models.Account{Name: "Bo", Email: "bo@b.com", Role: models.RoleRegular})
		created <- err
	}()

	select {
	case err := <-created:
		t.Fatalf("create finished while a unit of work was open: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-created)

	got, err := s.Accounts().GetByEmail(ctx, "bo@b.com")
	require.NoError(t, err, "committed create must survive the other rollback")
	assert.Equal(t, "Bo", got.Name)

	orig, err := s.Accounts().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, orig.EmailVerified)
}

func TestWithinTx_UncommittedWritesAreInvisible(t *testing.T) {
	s := NewStore(timex.Frozen(t0))
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithinTx(ctx, func(ctx context.Context, _ dbx.DBTX) error {
			if _, err := s.Accounts().Create(ctx, &models.Account{Name: "Cy", Email: "cy@b.com", Role: models.RoleRegular}); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("mail token failed")
		})
	}()
	<-entered

	found := make(chan error, 1)
	go func() {
		_, err := s.Accounts().GetByEmail(ctx, "cy@b.com")
		found <- err
	}()

	close(release)
	require.Error(t, <-txDone)
	require.ErrorIs(t, <-found, common.ErrorNotFound)
}
