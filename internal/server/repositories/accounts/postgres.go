package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medmind-auth/internal/common"
	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/models"
)

const selectAccount = `SELECT id, name, username, email, password_hash, role, email_verified, company_id, created_at, updated_at
		 FROM accounts`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a         models.Account
		username  sql.NullString
		role      string
		companyID sql.NullInt64
	)

	if err := row.Scan(&a.ID, &a.Name, &username, &a.Email, &a.PasswordHash, &role,
		&a.EmailVerified, &companyID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	r, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	a.Role = r

	if username.Valid {
		a.Username = &username.String
	}
	if companyID.Valid {
		a.CompanyID = &companyID.Int64
	}
	return &a, nil
}

func wrapWriteError(err error) error {
	if dbx.IsUniqueViolation(err) {
		return fmt.Errorf("db error: %w", common.ErrorAlreadyExists)
	}
	return fmt.Errorf("db error: %w", err)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt64(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (name, username, email, password_hash, role, email_verified, company_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		a.Name, nullableString(a.Username), a.Email, a.PasswordHash, a.Role.String(), a.EmailVerified, nullableInt64(a.CompanyID),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, wrapWriteError(err)
	}

	return a, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, selectAccount+"\n\t\t WHERE "+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, "username = $1", username)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.db.QueryContext(ctx, selectAccount+"\n\t\t ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts
		 SET name = $2, username = $3, email = $4, password_hash = $5, role = $6,
		     email_verified = $7, company_id = $8, updated_at = now()
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, a.ID, a.Name, nullableString(a.Username), a.Email, a.PasswordHash,
		a.Role.String(), a.EmailVerified, nullableInt64(a.CompanyID))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query :=
		`UPDATE accounts SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id, passwordHash)
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id int64) error {
	query :=
		`UPDATE accounts SET email_verified = TRUE, updated_at = now()
		 WHERE id = $1
		 `
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) LockForUpdate(ctx context.Context, id int64) error {
	query :=
		`SELECT id FROM accounts
		 WHERE id = $1
		 FOR NO KEY UPDATE
		 `
	var got int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM accounts WHERE id = $1`, id)
}
