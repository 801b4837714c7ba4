package user

import (
	"context"

	"github.com/lllypuk/styx/internal/domain/user"
)

// CommandRepository defines the write side for users.
// interface declared on the consumer side (application layer)
type CommandRepository interface {
	// Insert stores a new user at version 1
	Insert(ctx context.Context, u *user.User) error

	// Replace overwrites the whole document if the stored version still equals u.Version().
	// Returns errs.ErrConcurrentModification on a version mismatch and errs.ErrNotFound if the document is gone.
	Replace(ctx context.Context, u *user.User) error
}

// QueryRepository defines the read side for users
type QueryRepository interface {
	// FindBySubjectID returns the user registered for the token subject
	FindBySubjectID(ctx context.Context, subjectID string) (*user.User, error)
}

// Repository combines Command and Query interfaces for convenience
type Repository interface {
	CommandRepository
	QueryRepository
}
