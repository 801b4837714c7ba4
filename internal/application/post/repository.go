package post

import (
	"context"

	postdomain "github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// CommandRepository defines the write side for posts
type CommandRepository interface {
	// Insert stores a new post at version 1
	Insert(ctx context.Context, p *postdomain.Post) error

	// Replace overwrites the whole aggregate if the stored version equals p.Version()
	Replace(ctx context.Context, p *postdomain.Post) error

	// Delete removes the post if the stored version equals version
	Delete(ctx context.Context, id uuid.UUID, version int64) error
}

// QueryRepository defines the read side for posts
type QueryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*postdomain.Post, error)

	// FindByType returns posts of a category, newest first
	FindByType(ctx context.Context, postType string) ([]*postdomain.Post, error)
}

// Repository combines Command and Query interfaces
type Repository interface {
	CommandRepository
	QueryRepository
}
