package dummydb

import (
	"context"

	"github.com/trezcool/mwalimu/core/chat"
)

type auditRepository struct {
	db *auditTable
}

var _ chat.AuditRepository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) *auditRepository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) CreateEntry(_ context.Context, entry chat.AuditEntry) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = append(repo.db.rows, entry)
	return nil
}

// Entries returns the recorded entries, oldest first.
func (repo *auditRepository) Entries() []chat.AuditEntry {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]chat.AuditEntry(nil), repo.db.rows...)
}
