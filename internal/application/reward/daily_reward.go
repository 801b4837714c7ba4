// Package reward grants the daily coin reward for posting.
package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lllypuk/styx/internal/application/appcore"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/domain/user"
)

// DefaultDailyAmount is credited when the rule matches
const DefaultDailyAmount = 500

// PostCounter counts posts for the reward rule
type PostCounter interface {
	CountByOwnerSince(ctx context.Context, ownerSubjectID string, since time.Time) (int64, error)
}

// ClaimDailyRewardCommand - запрос ежедневной награды
type ClaimDailyRewardCommand struct {
	SubjectID string
}

// Result describes the outcome; TotalCoins is set only when Rewarded
type Result struct {
	Rewarded   bool
	PostsToday int64
	UserID     string
	TotalCoins int
}

// DailyRewardUseCase grants the reward when the caller has exactly one post today (UTC).
// The rule is literal: it grants again on every call while the count stays at one.
type DailyRewardUseCase struct {
	posts    PostCounter
	updater  *userapp.Updater
	amount   int
	clock    appcore.Clock
	recorder appcore.Recorder
	logger   *slog.Logger
}

// Option configures DailyRewardUseCase
type Option func(*DailyRewardUseCase)

// WithAmount overrides the credited amount
func WithAmount(amount int) Option {
	return func(uc *DailyRewardUseCase) {
		if amount > 0 {
			uc.amount = amount
		}
	}
}

// WithClock injects the time source
func WithClock(clock appcore.Clock) Option {
	return func(uc *DailyRewardUseCase) {
		uc.clock = clock
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r appcore.Recorder) Option {
	return func(uc *DailyRewardUseCase) {
		uc.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(uc *DailyRewardUseCase) {
		uc.logger = l
	}
}

// NewDailyRewardUseCase создает DailyRewardUseCase
func NewDailyRewardUseCase(posts PostCounter, updater *userapp.Updater, opts ...Option) *DailyRewardUseCase {
	uc := &DailyRewardUseCase{
		posts:    posts,
		updater:  updater,
		amount:   DefaultDailyAmount,
		clock:    appcore.SystemClock,
		recorder: appcore.NopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute evaluates the rule and credits coins on a match
func (uc *DailyRewardUseCase) Execute(ctx context.Context, cmd ClaimDailyRewardCommand) (Result, error) {
	if err := appcore.ValidateRequired("subjectId", cmd.SubjectID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	since := StartOfDay(uc.clock())
	count, err := uc.posts.CountByOwnerSince(ctx, cmd.SubjectID, since)
	if err != nil {
		return Result{}, fmt.Errorf("failed to count posts: %w", err)
	}

	if count != 1 {
		uc.recorder.DailyReward(false)
		return Result{Rewarded: false, PostsToday: count}, nil
	}

	usr, err := uc.updater.Apply(ctx, cmd.SubjectID, func(u *user.User) error {
		return u.CreditCoins(uc.amount)
	})
	if err != nil {
		if !errors.Is(err, userapp.ErrUserNotFound) {
			uc.logger.ErrorContext(ctx, "failed to credit daily reward",
				slog.String("subject_id", cmd.SubjectID),
				slog.String("error", err.Error()),
			)
		}
		return Result{}, err
	}

	uc.recorder.DailyReward(true)
	return Result{
		Rewarded:   true,
		PostsToday: count,
		UserID:     usr.ID().String(),
		TotalCoins: usr.Coins(),
	}, nil
}

// StartOfDay returns midnight UTC of t's UTC calendar day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
