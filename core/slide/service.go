package slide

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mwalimu/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNoFile   = errors.New("No file uploaded")
	ErrTooLarge = errors.New("File too large")
	ErrNotPDF   = errors.New("Invalid PDF file")
	ErrBadData  = errors.New("Invalid PDF data")
)

type (
	Repository interface {
		CreateFile(ctx context.Context, file File) (File, error)
		// CurrentFile returns the most recent upload, or core.ErrNotFound.
		CurrentFile(ctx context.Context) (File, error)
		// CurrentInfo returns the metadata of the most recent upload, or core.ErrNotFound.
		CurrentInfo(ctx context.Context) (Info, error)
	}

	Service struct {
		repo     Repository
		maxBytes int64
		logger   core.Logger
	}
)

func NewService(repo Repository, maxBytes int64, logger core.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{repo: repo, maxBytes: maxBytes, logger: logger}
}

func (svc *Service) MaxBytes() int64 { return svc.maxBytes }

// NewFilename generates a collision-free, timestamp-based slide filename.
func NewFilename(now time.Time) string {
	return fmt.Sprintf("slides-%s-%s.pdf", now.UTC().Format("20060102T150405"), uuid.New().String()[:8])
}

// Upload reads the deck from r, checks its size and PDF header, and stores it as the new
// current deck. The declared content type is informational only.
func (svc *Service) Upload(ctx context.Context, r io.Reader, declaredType string) (File, error) {
	if r == nil {
		return File{}, core.NewValidationError(ErrNoFile)
	}

	data, err := io.ReadAll(io.LimitReader(r, svc.maxBytes+1))
	if err != nil {
		return File{}, errors.Wrap(err, "reading uploaded file")
	}
	switch {
	case len(data) == 0:
		return File{}, core.NewValidationError(ErrNoFile)
	case int64(len(data)) > svc.maxBytes:
		return File{}, core.NewValidationError(ErrTooLarge)
	case !IsPDF(data):
		svc.logger.Info(fmt.Sprintf("rejected upload declared as %q: missing PDF header", declaredType))
		return File{}, core.NewValidationError(ErrNotPDF)
	}

	file, err := svc.repo.CreateFile(ctx, File{
		Filename:    NewFilename(NowFunc()),
		Data:        data,
		ContentType: ContentTypePDF,
		UploadedAt:  NowFunc().UTC(),
	})
	if err != nil {
		return File{}, errors.Wrap(err, "storing slide file")
	}
	svc.logger.Info(fmt.Sprintf("slides uploaded: %s (%d bytes)", file.Filename, len(data)))
	return file, nil
}

// Current returns the current deck. The stored bytes are verified again: a blob without
// the PDF header yields ErrBadData.
func (svc *Service) Current(ctx context.Context) (File, error) {
	file, err := svc.repo.CurrentFile(ctx)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return File{}, core.ErrNotFound
		}
		return File{}, errors.Wrap(err, "loading current slide file")
	}
	if !IsPDF(file.Data) {
		return File{}, errors.Wrapf(ErrBadData, "slide file %s", file.Filename)
	}
	if file.ContentType == "" {
		file.ContentType = ContentTypePDF
	}
	return file, nil
}

// Info describes the current deck. It never returns core.ErrNotFound: HasData is false instead.
func (svc *Service) Info(ctx context.Context) (Info, error) {
	info, err := svc.repo.CurrentInfo(ctx)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return Info{}, nil
		}
		return Info{}, errors.Wrap(err, "loading current slide info")
	}
	info.HasData = true
	return info, nil
}

// CurrentFilename implements course.SlidesLookup.
func (svc *Service) CurrentFilename(ctx context.Context) (string, error) {
	info, err := svc.repo.CurrentInfo(ctx)
	if err != nil {
		return "", err
	}
	return info.Filename, nil
}
