package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/course"
)

type contentRow struct {
	ID                 int64       `db:"id"`
	Topics             []byte      `db:"topics"`
	LearningObjectives []byte      `db:"learning_objectives"`
	AIScope            null.String `db:"ai_scope"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

type contentRepository struct {
	exec sqlx.ExtContext
}

var _ course.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(exec sqlx.ExtContext) *contentRepository {
	return &contentRepository{exec: exec}
}

// trapNoRowsErr maps psql "no rows" err to core.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return core.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (row contentRow) revision() (course.Revision, error) {
	rev := course.Revision{ID: row.ID, UpdatedAt: row.UpdatedAt.UTC()}
	if err := json.Unmarshal(row.Topics, &rev.Content.Topics); err != nil {
		return course.Revision{}, errors.Wrap(err, "decoding topics")
	}
	if err := json.Unmarshal(row.LearningObjectives, &rev.Content.LearningObjectives); err != nil {
		return course.Revision{}, errors.Wrap(err, "decoding learning objectives")
	}
	rev.Content.AIScope = row.AIScope.String
	return rev, nil
}

func (repo *contentRepository) CurrentRevision(ctx context.Context) (course.Revision, error) {
	var row contentRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `
		SELECT id, topics, learning_objectives, ai_scope, updated_at
		FROM course_content
		ORDER BY id DESC
		LIMIT 1`)
	if err != nil {
		return course.Revision{}, trapNoRowsErr(err, "selecting current course content")
	}
	return row.revision()
}

func (repo *contentRepository) CreateRevision(ctx context.Context, content course.Content) (course.Revision, error) {
	content.Normalize()
	topics, err := json.Marshal(content.Topics)
	if err != nil {
		return course.Revision{}, errors.Wrap(err, "encoding topics")
	}
	objectives, err := json.Marshal(content.LearningObjectives)
	if err != nil {
		return course.Revision{}, errors.Wrap(err, "encoding learning objectives")
	}

	var row contentRow
	err = sqlx.GetContext(ctx, repo.exec, &row, `
		INSERT INTO course_content (topics, learning_objectives, ai_scope, updated_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, topics, learning_objectives, ai_scope, updated_at`,
		topics, objectives, content.AIScope)
	if err != nil {
		return course.Revision{}, errors.Wrap(err, "inserting course content")
	}
	return row.revision()
}
