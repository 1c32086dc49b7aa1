package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mwalimu/core/slide"
)

type slideRow struct {
	ID          int64       `db:"id"`
	Filename    string      `db:"filename"`
	FileData    []byte      `db:"file_data"`
	FileSize    int64       `db:"file_size"`
	ContentType null.String `db:"content_type"`
	UploadedAt  time.Time   `db:"uploaded_at"`
}

type slideRepository struct {
	exec sqlx.ExtContext
}

var _ slide.Repository = (*slideRepository)(nil) // interface compliance check

func NewSlideRepository(exec sqlx.ExtContext) *slideRepository {
	return &slideRepository{exec: exec}
}

func (row slideRow) file() slide.File {
	return slide.File{
		ID:          row.ID,
		Filename:    row.Filename,
		Data:        row.FileData,
		ContentType: row.ContentType.String,
		UploadedAt:  row.UploadedAt.UTC(),
	}
}

func (repo *slideRepository) CreateFile(ctx context.Context, file slide.File) (slide.File, error) {
	uploadedAt := file.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}

	var row slideRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `
		INSERT INTO course_files (filename, file_data, content_type, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, filename, file_data, content_type, uploaded_at`,
		file.Filename, file.Data, null.NewString(file.ContentType, file.ContentType != ""), uploadedAt.UTC())
	if err != nil {
		return slide.File{}, errors.Wrap(err, "inserting slide file")
	}
	return row.file(), nil
}

func (repo *slideRepository) CurrentFile(ctx context.Context) (slide.File, error) {
	var row slideRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `
		SELECT id, filename, file_data, content_type, uploaded_at
		FROM course_files
		ORDER BY id DESC
		LIMIT 1`)
	if err != nil {
		return slide.File{}, trapNoRowsErr(err, "selecting current slide file")
	}
	return row.file(), nil
}

func (repo *slideRepository) CurrentInfo(ctx context.Context) (slide.Info, error) {
	var row slideRow
	err := sqlx.GetContext(ctx, repo.exec, &row, `
		SELECT id, filename, OCTET_LENGTH(file_data) AS file_size, content_type, uploaded_at
		FROM course_files
		ORDER BY id DESC
		LIMIT 1`)
	if err != nil {
		return slide.Info{}, trapNoRowsErr(err, "selecting current slide info")
	}
	uploadedAt := row.UploadedAt.UTC()
	return slide.Info{
		Filename:    row.Filename,
		ContentType: row.ContentType.String,
		FileSize:    row.FileSize,
		UploadedAt:  &uploadedAt,
	}, nil
}
