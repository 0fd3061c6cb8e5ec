package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/medmind-auth/internal/dbx"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/emailtokens"
	"github.com/dmitrijs2005/medmind-auth/internal/server/repositories/memory"
)

// MemoryRepositoryManager serves every repository from one memory.Store,
// ignoring the handle it is given.
type MemoryRepositoryManager struct {
	store *memory.Store
}

func NewMemoryRepositoryManager(store *memory.Store) *MemoryRepositoryManager {
	return &MemoryRepositoryManager{store: store}
}

// RunMigrations is a no-op: the store has no schema.
func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.store.Accounts()
}

func (m *MemoryRepositoryManager) EmailTokens(dbx.DBTX) emailtokens.Repository {
	return m.store.EmailTokens()
}
