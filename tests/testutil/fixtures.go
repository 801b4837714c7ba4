package testutil

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/user"
)

// Faker is a seeded generator so fixture data is stable across runs
var Faker = gofakeit.New(42)

// SubjectID returns a fake identity-provider subject
func SubjectID() string {
	return "auth0|" + Faker.UUID()
}

// NewUserFixture creates a registered user with fake profile data
func NewUserFixture(t *testing.T, opts ...func(*user.User)) *user.User {
	t.Helper()

	u, err := user.NewUser(SubjectID(), Faker.Email(), Faker.Name())
	require.NoError(t, err)
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// WithCoins credits the fixture user
func WithCoins(amount int) func(*user.User) {
	return func(u *user.User) {
		if amount > 0 {
			_ = u.CreditCoins(amount)
		}
	}
}

// NewPostParamsFixture returns valid params for a post of postType owned by owner
func NewPostParamsFixture(owner, postType string) post.NewPostParams {
	return post.NewPostParams{
		PostType:       postType,
		OwnerSubjectID: owner,
		AuthorName:     Faker.Name(),
		AuthorEmail:    Faker.Email(),
		Caption:        Faker.Sentence(6),
	}
}

// NewPostFixture creates a post of postType owned by owner at createdAt
func NewPostFixture(t *testing.T, owner, postType string, createdAt time.Time) *post.Post {
	t.Helper()

	p, err := post.NewPost(NewPostParamsFixture(owner, postType), createdAt)
	require.NoError(t, err)
	return p
}

// CommentParamsFixture returns params for a comment written by owner
func CommentParamsFixture(owner string) post.CommentParams {
	return post.CommentParams{
		OwnerSubjectID: owner,
		AuthorName:     Faker.FirstName(),
		Email:          Faker.Email(),
		Text:           Faker.Sentence(8),
	}
}
