package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/application/appcore"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
)

// CreatePostUseCase stores a new post owned by the caller
type CreatePostUseCase struct {
	repo   CommandRepository
	clock  appcore.Clock
	logger *slog.Logger
}

// NewCreatePostUseCase создает CreatePostUseCase
func NewCreatePostUseCase(repo CommandRepository, clock appcore.Clock, logger *slog.Logger) *CreatePostUseCase {
	if clock == nil {
		clock = appcore.SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CreatePostUseCase{repo: repo, clock: clock, logger: logger}
}

// Execute выполняет создание поста
func (uc *CreatePostUseCase) Execute(ctx context.Context, cmd CreatePostCommand) (*postdomain.Post, error) {
	if err := uc.validate(cmd); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	p, err := postdomain.NewPost(postdomain.NewPostParams{
		PostType:       cmd.PostType,
		OwnerSubjectID: cmd.SubjectID,
		AuthorName:     cmd.AuthorName,
		AuthorEmail:    cmd.AuthorEmail,
		Caption:        cmd.Caption,
		MediaURL:       cmd.MediaURL,
	}, uc.clock())
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if err = uc.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	uc.logger.InfoContext(ctx, "post created",
		slog.String("post_id", p.ID().String()),
		slog.String("post_type", p.PostType()),
	)
	return p, nil
}

func (uc *CreatePostUseCase) validate(cmd CreatePostCommand) error {
	return errors.Join(
		appcore.ValidateRequired("subjectId", cmd.SubjectID),
		appcore.ValidateRequired("postType", cmd.PostType),
		appcore.ValidateRequired("caption", cmd.Caption),
		appcore.ValidateRequired("name", cmd.AuthorName),
		appcore.ValidateRequired("email", cmd.AuthorEmail),
	)
}
