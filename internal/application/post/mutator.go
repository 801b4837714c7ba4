package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/errs"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// Mutator loads a post, applies an in-memory change and writes the whole aggregate back
// conditional on the version it read. Conflicts rerun the full cycle.
type Mutator struct {
	repo     Repository
	attempts int
	recorder appcore.Recorder
	logger   *slog.Logger
}

// MutatorOption configures a Mutator
type MutatorOption func(*Mutator)

// WithWriteAttempts bounds the retry loop
func WithWriteAttempts(n int) MutatorOption {
	return func(m *Mutator) {
		m.attempts = n
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r appcore.Recorder) MutatorOption {
	return func(m *Mutator) {
		m.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) MutatorOption {
	return func(m *Mutator) {
		m.logger = l
	}
}

// NewMutator создает Mutator
func NewMutator(repo Repository, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		repo:     repo,
		attempts: appcore.DefaultWriteAttempts,
		recorder: appcore.NopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply runs mutate on a fresh copy of the post and persists it.
// An error from mutate aborts the write and is returned unchanged.
func (m *Mutator) Apply(
	ctx context.Context,
	postID uuid.UUID,
	mutate func(*postdomain.Post) error,
) (*postdomain.Post, error) {
	var updated *postdomain.Post

	err := appcore.RetryOnConflict(ctx, m.attempts, m.recorder, func(ctx context.Context) error {
		p, err := m.Load(ctx, postID)
		if err != nil {
			return err
		}
		if err = mutate(p); err != nil {
			return err
		}
		if err = m.repo.Replace(ctx, p); err != nil {
			if errors.Is(err, errs.ErrConcurrentModification) {
				m.logger.DebugContext(ctx, "post version conflict, retrying",
					slog.String("post_id", postID.String()),
					slog.Int64("version", p.Version()),
				)
			}
			return mapWriteError(err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the post after check approves the loaded aggregate
func (m *Mutator) Delete(
	ctx context.Context,
	postID uuid.UUID,
	check func(*postdomain.Post) error,
) error {
	return appcore.RetryOnConflict(ctx, m.attempts, m.recorder, func(ctx context.Context) error {
		p, err := m.Load(ctx, postID)
		if err != nil {
			return err
		}
		if err = check(p); err != nil {
			return err
		}
		return mapWriteError(m.repo.Delete(ctx, p.ID(), p.Version()))
	})
}

// Load reads a post and maps a missing document to ErrPostNotFound
func (m *Mutator) Load(ctx context.Context, id uuid.UUID) (*postdomain.Post, error) {
	p, err := m.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return p, nil
}

// mapWriteError keeps version conflicts retryable and turns a vanished document into NotFound
func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errs.ErrConcurrentModification):
		return err
	case errors.Is(err, errs.ErrNotFound):
		return ErrPostNotFound
	default:
		return fmt.Errorf("failed to save post: %w", err)
	}
}
