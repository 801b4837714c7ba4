package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/application/appcore"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
)

// DeletePostUseCase removes a post; only its owner may do it
type DeletePostUseCase struct {
	mutator *Mutator
	logger  *slog.Logger
}

// NewDeletePostUseCase создает DeletePostUseCase
func NewDeletePostUseCase(mutator *Mutator, logger *slog.Logger) *DeletePostUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeletePostUseCase{mutator: mutator, logger: logger}
}

// Execute выполняет удаление
func (uc *DeletePostUseCase) Execute(ctx context.Context, cmd DeletePostCommand) error {
	if err := appcore.ValidateID("postId", cmd.PostID); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	err := uc.mutator.Delete(ctx, cmd.PostID, func(p *postdomain.Post) error {
		if !p.CanBeMutatedBy(cmd.SubjectID) {
			return postdomain.ErrNotOwner
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.InfoContext(ctx, "post deleted", slog.String("post_id", cmd.PostID.String()))
	return nil
}

// AttachMediaUseCase sets the media url of a post owned by the caller
type AttachMediaUseCase struct {
	mutator *Mutator
}

// NewAttachMediaUseCase создает AttachMediaUseCase
func NewAttachMediaUseCase(mutator *Mutator) *AttachMediaUseCase {
	return &AttachMediaUseCase{mutator: mutator}
}

// Execute выполняет обновление media url
func (uc *AttachMediaUseCase) Execute(ctx context.Context, cmd AttachMediaCommand) (*postdomain.Post, error) {
	if err := errors.Join(
		appcore.ValidateID("postId", cmd.PostID),
		appcore.ValidateRequired("mediaUrl", cmd.MediaURL),
	); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return uc.mutator.Apply(ctx, cmd.PostID, func(p *postdomain.Post) error {
		return p.AttachMedia(cmd.SubjectID, cmd.MediaURL)
	})
}
