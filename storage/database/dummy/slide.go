package dummydb

import (
	"context"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/slide"
)

type slideRepository struct {
	db *slideTable
}

var _ slide.Repository = (*slideRepository)(nil) // interface compliance check

func NewSlideRepository(db *DB) *slideRepository {
	return &slideRepository{db: db.slide}
}

func (repo *slideRepository) CreateFile(_ context.Context, file slide.File) (slide.File, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	file.ID = repo.db.pkCount
	file.Data = append([]byte(nil), file.Data...)
	repo.db.rows = append(repo.db.rows, file)
	return file, nil
}

func (repo *slideRepository) current() (slide.File, error) {
	if len(repo.db.rows) == 0 {
		return slide.File{}, core.ErrNotFound
	}
	return repo.db.rows[len(repo.db.rows)-1], nil
}

func (repo *slideRepository) CurrentFile(_ context.Context) (slide.File, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	file, err := repo.current()
	if err != nil {
		return slide.File{}, err
	}
	file.Data = append([]byte(nil), file.Data...)
	return file, nil
}

func (repo *slideRepository) CurrentInfo(_ context.Context) (slide.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	file, err := repo.current()
	if err != nil {
		return slide.Info{}, err
	}
	uploadedAt := file.UploadedAt
	return slide.Info{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		FileSize:    int64(len(file.Data)),
		UploadedAt:  &uploadedAt,
	}, nil
}

func (repo *slideRepository) Count() int {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.rows)
}
