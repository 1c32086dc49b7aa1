package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core/chat"
)

type auditRepository struct {
	exec sqlx.ExtContext
}

var _ chat.AuditRepository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(exec sqlx.ExtContext) *auditRepository {
	return &auditRepository{exec: exec}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, entry chat.AuditEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO chat_audit (id, prompt, response, created_at) VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.Prompt, null.NewString(entry.Response, entry.Response != ""), createdAt.UTC())
	return errors.Wrap(err, "inserting chat audit entry")
}

// CountByPrompt returns how many audit entries were recorded for prompt.
func (repo *auditRepository) CountByPrompt(ctx context.Context, prompt string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, repo.exec, &n, `SELECT COUNT(*) FROM chat_audit WHERE prompt = $1`, prompt)
	return n, errors.Wrap(err, "counting chat audit entries")
}
