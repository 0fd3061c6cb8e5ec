package emailtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	invalidateRe = `(?s)^UPDATE\s+email_tokens\s+SET\s+used\s*=\s*TRUE\s+WHERE\s+account_id\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2\s+AND\s+used\s*=\s*FALSE\s*$`
	insertRe     = `(?s)^INSERT\s+INTO\s+email_tokens\s*\(account_id,\s*token,\s*purpose,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`
	consumeRe    = `(?s)^UPDATE\s+email_tokens\s+SET\s+used\s*=\s*TRUE\s+WHERE\s+token\s*=\s*\$1\s+AND\s+purpose\s*=\s*\$2\s+AND\s+used\s*=\s*FALSE\s+AND\s+expires_at\s*>\s*\$3\s+RETURNING\s+account_id\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestReplace_InvalidatesThenInserts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	created := exp.Add(-24 * time.Hour)

	mock.ExpectExec(invalidateRe).
		WithArgs(int64(7), "email_verification").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(insertRe).
		WithArgs(int64(7), "tok", "email_verification", exp).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))

	tok := &models.EmailToken{AccountID: 7, Token: "tok", Purpose: models.PurposeEmailVerification, ExpiresAt: exp}
	require.NoError(t, repo.Replace(context.Background(), tok))
	assert.Equal(t, int64(11), tok.ID)
	assert.Equal(t, created, tok.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_InvalidateError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(invalidateRe).WillReturnError(errors.New("db down"))

	err := repo.Replace(context.Background(), &models.EmailToken{AccountID: 7, Purpose: models.PurposePasswordReset})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	require.NoError(t, mock.ExpectationsWereMet(), "insert must not run after a failed invalidate")
}

func TestReplace_DuplicateToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(invalidateRe).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(insertRe).WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Replace(context.Background(), &models.EmailToken{AccountID: 7, Token: "dup", Purpose: models.PurposePasswordReset})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestConsume_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(consumeRe).
		WithArgs("tok", "password_reset", now).
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow(int64(7)))

	id, err := repo.Consume(context.Background(), "tok", models.PurposePasswordReset, now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestConsume_MissIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeRe).WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "tok", models.PurposeEmailVerification, time.Now())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestConsume_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeRe).WillReturnError(errors.New("conn reset"))

	_, err := repo.Consume(context.Background(), "tok", models.PurposeEmailVerification, time.Now())
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	cutoff := time.Now()
	mock.ExpectExec(`^DELETE\s+FROM\s+email_tokens\s+WHERE\s+expires_at\s*<=\s*\$1$`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
