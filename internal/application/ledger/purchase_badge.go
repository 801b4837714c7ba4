// Package ledger holds the coin and badge operations on a user.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/application/appcore"
	userapp "github.com/lllypuk/styx/internal/application/user"
	"github.com/lllypuk/styx/internal/domain/user"
)

// Badge purchase outcomes reported to the recorder
const (
	OutcomePurchased    = "purchased"
	OutcomeOwned        = "already_owned"
	OutcomeInsufficient = "insufficient_funds"
)

// PurchaseBadgeCommand - покупка бейджа за монеты.
// Cost comes from the client as the shop shows it; the catalog is not consulted.
type PurchaseBadgeCommand struct {
	SubjectID string
	Cost      int
	ImageURL  string
}

// PurchaseBadgeUseCase debits coins and grants a badge in one document write
type PurchaseBadgeUseCase struct {
	updater  *userapp.Updater
	recorder appcore.Recorder
	logger   *slog.Logger
}

// NewPurchaseBadgeUseCase создает PurchaseBadgeUseCase
func NewPurchaseBadgeUseCase(updater *userapp.Updater, recorder appcore.Recorder, logger *slog.Logger) *PurchaseBadgeUseCase {
	if recorder == nil {
		recorder = appcore.NopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseBadgeUseCase{updater: updater, recorder: recorder, logger: logger}
}

// Execute выполняет покупку
func (uc *PurchaseBadgeUseCase) Execute(ctx context.Context, cmd PurchaseBadgeCommand) (userapp.Result, error) {
	if err := uc.validate(cmd); err != nil {
		return userapp.Result{}, fmt.Errorf("validation failed: %w", err)
	}

	usr, err := uc.updater.Apply(ctx, cmd.SubjectID, func(u *user.User) error {
		return u.PurchaseBadge(cmd.Cost, cmd.ImageURL)
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrBadgeOwned):
			uc.recorder.BadgePurchase(OutcomeOwned)
		case errors.Is(err, user.ErrInsufficientFunds):
			uc.recorder.BadgePurchase(OutcomeInsufficient)
		}
		return userapp.Result{}, err
	}

	uc.recorder.BadgePurchase(OutcomePurchased)
	uc.logger.InfoContext(ctx, "badge purchased",
		slog.String("subject_id", cmd.SubjectID),
		slog.String("image_url", cmd.ImageURL),
		slog.Int("cost", cmd.Cost),
		slog.Int("coins_left", usr.Coins()),
	)

	return userapp.Result{Result: appcore.Result[*user.User]{Value: usr, Version: usr.Version()}}, nil
}

func (uc *PurchaseBadgeUseCase) validate(cmd PurchaseBadgeCommand) error {
	return errors.Join(
		appcore.ValidateRequired("subjectId", cmd.SubjectID),
		appcore.ValidatePositive("value", cmd.Cost),
		appcore.ValidateRequired("imageUrl", cmd.ImageURL),
	)
}
