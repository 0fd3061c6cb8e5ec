package dbx

import (
	"context"
	"database/sql"
)

// TxFunc is a unit of work executed against a transactional handle.
type TxFunc func(ctx context.Context, tx DBTX) error

// Transactor hands out a plain handle for single statements and runs
// multi-statement units of work atomically.
type Transactor interface {
	DB() DBTX
	WithinTx(ctx context.Context, fn TxFunc) error
}

// SQLTransactor is the database/sql Transactor.
type SQLTransactor struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLTransactor wraps db; opts may be nil for the driver default
// (READ COMMITTED on Postgres). With LevelSerializable, units of work that
// Postgres aborts as serialization failures or deadlocks are re-run.
func NewSQLTransactor(db *sql.DB, opts *sql.TxOptions) *SQLTransactor {
	return &SQLTransactor{db: db, opts: opts}
}

func (t *SQLTransactor) DB() DBTX { return t.db }

func (t *SQLTransactor) WithinTx(ctx context.Context, fn TxFunc) error {
	if t.opts != nil && t.opts.Isolation == sql.LevelSerializable {
		return WithSerializableTx(ctx, t.db, fn)
	}
	return WithTx(ctx, t.db, t.opts, fn)
}
