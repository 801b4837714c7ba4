package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/user"
)

// Resolver maps a verified token subject to the stored user
type Resolver struct {
	repo QueryRepository
}

// NewResolver создает Resolver
func NewResolver(repo QueryRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the user registered for subjectID or ErrUserNotFound
func (r *Resolver) Resolve(ctx context.Context, subjectID string) (*user.User, error) {
	if err := appcore.ValidateRequired("subjectId", subjectID); err != nil {
		return nil, err
	}

	u, err := r.repo.FindBySubjectID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

// Updater runs resolve -> mutate -> conditional replace, retrying the whole cycle on version conflicts
type Updater struct {
	resolver *Resolver
	repo     CommandRepository
	attempts int
	recorder appcore.Recorder
	logger   *slog.Logger
}

// UpdaterOption configures an Updater
type UpdaterOption func(*Updater)

// WithWriteAttempts bounds the retry loop
func WithWriteAttempts(n int) UpdaterOption {
	return func(u *Updater) {
		u.attempts = n
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r appcore.Recorder) UpdaterOption {
	return func(u *Updater) {
		u.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) UpdaterOption {
	return func(u *Updater) {
		u.logger = l
	}
}

// NewUpdater создает Updater
func NewUpdater(repo Repository, opts ...UpdaterOption) *Updater {
	u := &Updater{
		resolver: NewResolver(repo),
		repo:     repo,
		attempts: appcore.DefaultWriteAttempts,
		recorder: appcore.NopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Apply loads the user for subjectID, lets mutate change it and persists the result.
// An error from mutate aborts without writing.
func (u *Updater) Apply(
	ctx context.Context,
	subjectID string,
	mutate func(*user.User) error,
) (*user.User, error) {
	var updated *user.User

	err := appcore.RetryOnConflict(ctx, u.attempts, u.recorder, func(ctx context.Context) error {
		usr, err := u.resolver.Resolve(ctx, subjectID)
		if err != nil {
			return err
		}
		if err = mutate(usr); err != nil {
			return err
		}
		if err = u.repo.Replace(ctx, usr); err != nil {
			if errors.Is(err, errs.ErrConcurrentModification) {
				u.logger.DebugContext(ctx, "user version conflict, retrying",
					slog.String("subject_id", subjectID),
					slog.Int64("version", usr.Version()),
				)
				return err
			}
			if errors.Is(err, errs.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to save user: %w", err)
		}
		updated = usr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
