package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/emailtokens"
)

// RepositoryManager vends repositories bound to a handle, so the same code
// path works with a plain connection or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	EmailTokens(db dbx.DBTX) emailtokens.Repository
}
