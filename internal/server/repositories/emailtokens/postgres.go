package emailtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Replace(ctx context.Context, t *models.EmailToken) error {
	invalidate :=
		`UPDATE email_tokens SET used = TRUE
		 WHERE account_id = $1 AND purpose = $2 AND used = FALSE
		 `
	if _, err := r.db.ExecContext(ctx, invalidate, t.AccountID, t.Purpose.String()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	insert :=
		`INSERT INTO email_tokens (account_id, token, purpose, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `
	err := r.db.QueryRowContext(ctx, insert, t.AccountID, t.Token, t.Purpose.String(), t.ExpiresAt).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("db error: %w", common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, token string, purpose models.Purpose, now time.Time) (int64, error) {
	query :=
		`UPDATE email_tokens SET used = TRUE
		 WHERE token = $1 AND purpose = $2 AND used = FALSE AND expires_at > $3
		 RETURNING account_id
		 `

	var accountID int64
	if err := r.db.QueryRowContext(ctx, query, token, purpose.String(), now).Scan(&accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return accountID, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM email_tokens WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
