package course

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/mwalimu/core"
)

type (
	Repository interface {
		// CurrentRevision returns the revision with the highest ID, or core.ErrNotFound.
		CurrentRevision(ctx context.Context) (Revision, error)
		CreateRevision(ctx context.Context, content Content) (Revision, error)
	}

	// SlidesLookup resolves the filename of the current slide deck.
	SlidesLookup interface {
		CurrentFilename(ctx context.Context) (string, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
		init     singleflight.Group
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

// Validate checks c against the Content rules.
func (svc *Service) Validate(c *Content) error {
	if err := svc.validate.Struct(c); err != nil {
		return err
	}
	c.Normalize()
	return nil
}

// Current returns the current content. When nothing was stored yet, the defaults are
// persisted once (concurrent callers share the same initialization) and returned.
// A stored revision that does not validate is answered with the defaults.
func (svc *Service) Current(ctx context.Context) (Content, error) {
	rev, err := svc.repo.CurrentRevision(ctx)
	switch {
	case err == nil:
		c := rev.Content
		if err := svc.Validate(&c); err != nil {
			svc.logger.Warn(fmt.Sprintf("stored revision %d is invalid, serving defaults", rev.ID), err)
			return DefaultContent(), nil
		}
		return c, nil
	case errors.Cause(err) == core.ErrNotFound:
		return svc.initDefaults(ctx)
	default:
		return Content{}, errors.Wrap(err, "loading current course content")
	}
}

func (svc *Service) initDefaults(ctx context.Context) (Content, error) {
	v, err, _ := svc.init.Do("defaults", func() (interface{}, error) {
		// someone may have written in the meantime
		rev, err := svc.repo.CurrentRevision(ctx)
		if err == nil {
			c := rev.Content
			c.Normalize()
			return c, nil
		}
		if errors.Cause(err) != core.ErrNotFound {
			return nil, errors.Wrap(err, "loading current course content")
		}

		rev, err = svc.repo.CreateRevision(ctx, DefaultContent())
		if err != nil {
			return nil, errors.Wrap(err, "persisting default course content")
		}
		svc.logger.Info(fmt.Sprintf("default course content stored as revision %d", rev.ID))
		return rev.Content, nil
	})
	if err != nil {
		return Content{}, err
	}
	return v.(Content), nil
}

// Snapshot returns the current content along with the current slides filename.
// Failing to resolve the filename is not an error: the default filename is reported.
func (svc *Service) Snapshot(ctx context.Context, slides SlidesLookup) (Snapshot, error) {
	c, err := svc.Current(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	name := DefaultSlidesFilename
	if slides != nil {
		if fn, err := slides.CurrentFilename(ctx); err == nil && fn != "" {
			name = fn
		} else if err != nil && errors.Cause(err) != core.ErrNotFound {
			svc.logger.Warn("resolving current slides filename", err)
		}
	}
	return Snapshot{Content: c, SlidesFilename: name}, nil
}

// AIScope returns the current AI scope, falling back to DefaultAIScope on any failure.
func (svc *Service) AIScope(ctx context.Context) string {
	c, err := svc.Current(ctx)
	if err != nil {
		svc.logger.Warn("loading AI scope, using default", err)
		return DefaultAIScope
	}
	if scope := core.CleanString(c.AIScope); scope != "" {
		return scope
	}
	return DefaultAIScope
}

// Update validates c and stores it as the new current revision (last write wins).
// Nothing is written when validation fails.
func (svc *Service) Update(ctx context.Context, c Content) (Revision, error) {
	if err := svc.Validate(&c); err != nil {
		return Revision{}, err
	}

	prev, prevErr := svc.repo.CurrentRevision(ctx)
	if prevErr != nil && errors.Cause(prevErr) != core.ErrNotFound {
		svc.logger.Warn("loading previous revision for diff", prevErr)
	}

	rev, err := svc.repo.CreateRevision(ctx, c)
	if err != nil {
		return Revision{}, errors.Wrap(err, "storing course content")
	}

	msg := fmt.Sprintf("course content updated: revision %d", rev.ID)
	if prevErr == nil {
		if diff := Diff(prev, rev); diff != "" {
			msg += "\n" + diff
		}
	}
	svc.logger.Info(msg)
	return rev, nil
}

// Diff returns a unified diff of the JSON forms of two revisions.
func Diff(from, to Revision) string {
	a, _ := json.MarshalIndent(from.Content, "", "  ")
	b, _ := json.MarshalIndent(to.Content, "", "  ")
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fmt.Sprintf("revision %d", from.ID),
		ToFile:   fmt.Sprintf("revision %d", to.ID),
		Context:  2,
	})
	if err != nil {
		return ""
	}
	return diff
}
