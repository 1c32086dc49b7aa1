package dummydb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/course"
)

type contentRepository struct {
	db *contentTable
}

var _ course.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) *contentRepository {
	return &contentRepository{db: db.content}
}

// clone deep copies c the same way a round trip through the jsonb columns would.
func clone(c course.Content) (course.Content, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return course.Content{}, err
	}
	var out course.Content
	err = json.Unmarshal(b, &out)
	return out, err
}

func (repo *contentRepository) CurrentRevision(_ context.Context) (course.Revision, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if len(repo.db.rows) == 0 {
		return course.Revision{}, core.ErrNotFound
	}
	rev := repo.db.rows[len(repo.db.rows)-1]
	c, err := clone(rev.Content)
	if err != nil {
		return course.Revision{}, errors.Wrap(err, "copying revision")
	}
	rev.Content = c
	return rev, nil
}

func (repo *contentRepository) CreateRevision(_ context.Context, content course.Content) (course.Revision, error) {
	c, err := clone(content)
	if err != nil {
		return course.Revision{}, errors.Wrap(err, "copying revision")
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	rev := course.Revision{ID: repo.db.pkCount, Content: c, UpdatedAt: time.Now().UTC()}
	repo.db.rows = append(repo.db.rows, rev)
	return rev, nil
}

// Count returns the number of stored revisions.
func (repo *contentRepository) Count() int {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.rows)
}
