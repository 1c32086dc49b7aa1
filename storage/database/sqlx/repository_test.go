package sqlxrepos_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/chat"
	"github.com/trezcool/mwalimu/core/course"
	"github.com/trezcool/mwalimu/core/slide"
	sqlxrepos "github.com/trezcool/mwalimu/storage/database/sqlx"
	"github.com/trezcool/mwalimu/tests"
)

func TestRepositories(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()

	t.Run("course content", func(t *testing.T) {
		repo := sqlxrepos.NewContentRepository(db)

		_, err := repo.CurrentRevision(ctx)
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))

		first := testutil.CreateRevision(t, repo, testutil.Content(2))
		second := testutil.CreateRevision(t, repo, course.Content{AIScope: "You are a COMP1010 tutor"})
		assert.Greater(t, second.ID, first.ID)
		assert.Equal(t, testutil.Content(2), first.Content)

		cur, err := repo.CurrentRevision(ctx)
		require.NoError(t, err)
		assert.Equal(t, second.ID, cur.ID)
		assert.Equal(t, []course.Topic{}, cur.Content.Topics, "stored collections are never null")
		assert.Equal(t, []string{}, cur.Content.LearningObjectives)
		assert.WithinDuration(t, time.Now(), cur.UpdatedAt, time.Minute)
	})

	t.Run("slides", func(t *testing.T) {
		repo := sqlxrepos.NewSlideRepository(db)

		_, err := repo.CurrentFile(ctx)
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))
		_, err = repo.CurrentInfo(ctx)
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))

		_, err = repo.CreateFile(ctx, slide.File{Filename: "old.pdf", Data: testutil.SamplePDF, ContentType: slide.ContentTypePDF})
		require.NoError(t, err)
		created, err := repo.CreateFile(ctx, slide.File{Filename: "new.pdf", Data: testutil.SamplePDF})
		require.NoError(t, err)

		cur, err := repo.CurrentFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, created.ID, cur.ID)
		assert.Equal(t, "new.pdf", cur.Filename)
		assert.Equal(t, testutil.SamplePDF, cur.Data)
		assert.Empty(t, cur.ContentType, "null content type")

		info, err := repo.CurrentInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new.pdf", info.Filename)
		assert.Equal(t, int64(len(testutil.SamplePDF)), info.FileSize)
	})

	t.Run("chat audit", func(t *testing.T) {
		repo := sqlxrepos.NewAuditRepository(db)
		prompt := "What is a variable?"

		for i := 0; i < 2; i++ {
			require.NoError(t, repo.CreateEntry(ctx, chat.AuditEntry{ID: uuid.New(), Prompt: prompt, Response: "A named value."}))
		}
		require.NoError(t, repo.CreateEntry(ctx, chat.AuditEntry{ID: uuid.New(), Prompt: "Explain loops"}))

		n, err := repo.CountByPrompt(ctx, prompt)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		id := uuid.New()
		require.NoError(t, repo.CreateEntry(ctx, chat.AuditEntry{ID: id, Prompt: prompt}))
		assert.Error(t, repo.CreateEntry(ctx, chat.AuditEntry{ID: id, Prompt: prompt}), "duplicate id")
	})
}
