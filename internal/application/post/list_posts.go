package post

import (
	"context"
	"fmt"

	"github.com/lllypuk/styx/internal/application/appcore"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
)

// ListPostsUseCase returns every post of a category
type ListPostsUseCase struct {
	repo QueryRepository
}

// NewListPostsUseCase создает ListPostsUseCase
func NewListPostsUseCase(repo QueryRepository) *ListPostsUseCase {
	return &ListPostsUseCase{repo: repo}
}

// Execute returns ErrNoPosts for an empty category
func (uc *ListPostsUseCase) Execute(ctx context.Context, query ListPostsQuery) ([]*postdomain.Post, error) {
	if err := appcore.ValidateRequired("postType", query.PostType); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	posts, err := uc.repo.FindByType(ctx, query.PostType)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	return posts, nil
}
