package post_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

const (
	owner     = "auth0|owner"
	commenter = "auth0|commenter"
	stranger  = "auth0|stranger"
)

var now = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newPost(t *testing.T) *post.Post {
	t.Helper()
	p, err := post.NewPost(post.NewPostParams{
		PostType:       "running",
		OwnerSubjectID: owner,
		AuthorName:     "Owner",
		AuthorEmail:    "owner@example.com",
		Caption:        "5k today",
	}, now)
	require.NoError(t, err)
	return p
}

func params(subject, text string) post.CommentParams {
	return post.CommentParams{
		OwnerSubjectID: subject,
		AuthorName:     "Name " + subject,
		Email:          subject + "@example.com",
		Text:           text,
	}
}

func TestNewPost(t *testing.T) {
	p := newPost(t)

	assert.False(t, p.ID().IsZero())
	assert.Equal(t, "running", p.PostType())
	assert.Equal(t, owner, p.OwnerSubjectID())
	assert.Empty(t, p.MediaURL())
	assert.Empty(t, p.Comments())
	assert.Equal(t, []string{}, p.Likes())
	assert.Zero(t, p.LikesCount())
	assert.Equal(t, now, p.CreatedAt())
}

func TestNewPost_RequiresFields(t *testing.T) {
	_, err := post.NewPost(post.NewPostParams{PostType: "running", OwnerSubjectID: owner}, now)

	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestThreadScenario(t *testing.T) {
	p := newPost(t)

	c1, err := p.AddComment(params(commenter, "hi"), now)
	require.NoError(t, err)
	r1, err := p.AddReply(c1.ID(), params(commenter, "yo"), now)
	require.NoError(t, err)

	ref := post.TargetRef{CommentID: c1.ID(), ReplyID: r1.ID()}

	edited, err := p.EditComment(commenter, ref, "hey")
	require.NoError(t, err)
	assert.Equal(t, "hey (edited)", edited.Text())

	deleted, err := p.DeleteComment(commenter, ref)
	require.NoError(t, err)
	assert.Equal(t, post.ReplyTombstone, deleted.Text())
	assert.Nil(t, deleted.OwnerSubjectID())
	assert.Nil(t, deleted.Email())
	assert.Equal(t, post.ScrubbedAuthorName, deleted.AuthorName())
	assert.True(t, deleted.IsDeleted())

	// the tombstone stays in place
	require.Len(t, p.Comments(), 1)
	require.Len(t, p.Comments()[0].Replies(), 1)
	assert.Equal(t, "hi", p.Comments()[0].Text())
}

func TestEdit_IsNotIdempotent(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "a"), now)
	require.NoError(t, err)
	ref := post.TargetRef{CommentID: c.ID()}

	_, err = p.EditComment(commenter, ref, "b")
	require.NoError(t, err)
	_, err = p.EditComment(commenter, ref, c.Text())
	require.NoError(t, err)

	assert.Equal(t, "b (edited) (edited)", c.Text())
}

func TestDeleteComment_UsesCommentTombstone(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "bye"), now)
	require.NoError(t, err)

	_, err = p.DeleteComment(commenter, post.TargetRef{CommentID: c.ID()})

	require.NoError(t, err)
	assert.Equal(t, post.CommentTombstone, c.Text())
	assert.Equal(t, post.StateDeleted, c.State())
}

func TestOwnershipEnforcement(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "mine"), now)
	require.NoError(t, err)
	r, err := p.AddReply(c.ID(), params(commenter, "also mine"), now)
	require.NoError(t, err)

	refs := map[string]post.TargetRef{
		"comment": {CommentID: c.ID()},
		"reply":   {CommentID: c.ID(), ReplyID: r.ID()},
	}

	for name, ref := range refs {
		t.Run(name, func(t *testing.T) {
			// the post owner has no rights over other people's comments
			for _, actor := range []string{stranger, owner, "AUTH0|COMMENTER", ""} {
				_, err := p.EditComment(actor, ref, "hijack")
				require.ErrorIs(t, err, errs.ErrUnauthorized)

				_, err = p.DeleteComment(actor, ref)
				require.ErrorIs(t, err, errs.ErrUnauthorized)
			}
		})
	}

	assert.Equal(t, "mine", c.Text())
	assert.Equal(t, commenter, *c.OwnerSubjectID())
	assert.Equal(t, "also mine", r.Text())
	assert.Equal(t, commenter, *r.OwnerSubjectID())
}

func TestTombstoneFinality(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "gone soon"), now)
	require.NoError(t, err)
	ref := post.TargetRef{CommentID: c.ID()}
	_, err = p.DeleteComment(commenter, ref)
	require.NoError(t, err)

	for _, actor := range []string{commenter, owner, stranger} {
		_, err = p.EditComment(actor, ref, "back")
		require.ErrorIs(t, err, post.ErrNotOwner)

		_, err = p.DeleteComment(actor, ref)
		require.ErrorIs(t, err, post.ErrNotOwner)
	}
	assert.Equal(t, post.CommentTombstone, c.Text())
}

func TestResolve(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "c"), now)
	require.NoError(t, err)
	r, err := p.AddReply(c.ID(), params(stranger, "r"), now)
	require.NoError(t, err)

	tests := []struct {
		name     string
		ref      post.TargetRef
		wantKind post.TargetKind
		wantErr  error
	}{
		{"post", post.TargetRef{}, post.TargetPost, nil},
		{"comment", post.TargetRef{CommentID: c.ID()}, post.TargetComment, nil},
		{"reply", post.TargetRef{CommentID: c.ID(), ReplyID: r.ID()}, post.TargetReply, nil},
		{"missing comment", post.TargetRef{CommentID: uuid.NewUUID()}, 0, post.ErrCommentNotFound},
		{"missing reply", post.TargetRef{CommentID: c.ID(), ReplyID: uuid.NewUUID()}, 0, post.ErrReplyNotFound},
		{"reply without comment", post.TargetRef{ReplyID: r.ID()}, 0, post.ErrReplyWithoutComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := p.Resolve(tt.ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, target.Kind)
			assert.NotNil(t, target.Likeable())
		})
	}
}

func TestNotFoundErrorsWrapSentinel(t *testing.T) {
	require.ErrorIs(t, post.ErrCommentNotFound, errs.ErrNotFound)
	require.ErrorIs(t, post.ErrReplyNotFound, errs.ErrNotFound)
	require.ErrorIs(t, post.ErrReplyWithoutComment, errs.ErrInvalidInput)
}

func TestAddReply_UnknownComment(t *testing.T) {
	p := newPost(t)

	_, err := p.AddReply(uuid.NewUUID(), params(commenter, "x"), now)

	require.ErrorIs(t, err, post.ErrCommentNotFound)
}

func TestAddComment_EmptyText(t *testing.T) {
	p := newPost(t)

	_, err := p.AddComment(params(commenter, "  "), now)

	require.ErrorIs(t, err, post.ErrEmptyText)
	assert.Empty(t, p.Comments())
}

func TestToggleLike_IsItsOwnInverse(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "c"), now)
	require.NoError(t, err)
	r, err := p.AddReply(c.ID(), params(commenter, "r"), now)
	require.NoError(t, err)

	refs := []post.TargetRef{
		{},
		{CommentID: c.ID()},
		{CommentID: c.ID(), ReplyID: r.ID()},
	}

	for _, ref := range refs {
		target, err := p.Resolve(ref)
		require.NoError(t, err)
		l := target.Likeable()
		l.ToggleLike(owner)
		before, beforeCount := l.Likes(), l.LikesCount()

		_, err = p.ToggleLikeOn(stranger, ref)
		require.NoError(t, err)
		assert.Contains(t, l.Likes(), stranger)

		_, err = p.ToggleLikeOn(stranger, ref)
		require.NoError(t, err)

		assert.Equal(t, before, l.Likes())
		assert.Equal(t, beforeCount, l.LikesCount())
	}
}

func TestToggleLike_CountMatchesMembers(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "c"), now)
	require.NoError(t, err)
	r, err := p.AddReply(c.ID(), params(commenter, "r"), now)
	require.NoError(t, err)

	refs := []post.TargetRef{{}, {CommentID: c.ID()}, {CommentID: c.ID(), ReplyID: r.ID()}}
	subjects := []string{owner, commenter, stranger, "auth0|a", "auth0|b"}
	rng := rand.New(rand.NewPCG(1, 2))

	for range 500 {
		ref := refs[rng.IntN(len(refs))]
		_, err := p.ToggleLikeOn(subjects[rng.IntN(len(subjects))], ref)
		require.NoError(t, err)
	}

	for _, l := range []post.Likeable{p, c, r} {
		assert.Len(t, l.Likes(), l.LikesCount())
		seen := map[string]bool{}
		for _, s := range l.Likes() {
			assert.False(t, seen[s], "duplicate like %s", s)
			seen[s] = true
		}
	}
}

func TestToggleLike_MissingTarget(t *testing.T) {
	p := newPost(t)

	_, err := p.ToggleLikeOn(stranger, post.TargetRef{CommentID: uuid.NewUUID()})

	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAttachMedia(t *testing.T) {
	p := newPost(t)

	require.ErrorIs(t, p.AttachMedia(stranger, "https://cdn/x.png"), errs.ErrUnauthorized)
	require.ErrorIs(t, p.AttachMedia(owner, ""), errs.ErrInvalidInput)
	require.NoError(t, p.AttachMedia(owner, "https://cdn/x.png"))
	assert.Equal(t, "https://cdn/x.png", p.MediaURL())
}

func TestCanMutate(t *testing.T) {
	o := "auth0|x"

	assert.True(t, post.CanMutate("auth0|x", &o))
	assert.False(t, post.CanMutate("auth0|X", &o))
	assert.False(t, post.CanMutate("auth0|x", nil))
	assert.False(t, post.CanMutate("", nil))
}

func TestReconstructComment_InfersLegacyTombstone(t *testing.T) {
	deleted := post.ReconstructComment(uuid.NewUUID(), nil, "User", post.ReplyTombstone, nil,
		nil, now, "", true, nil)
	active := post.ReconstructComment(uuid.NewUUID(), nil, "Anon", "hello", nil,
		[]string{"a", "a", "b"}, now, "", false, nil)

	assert.Equal(t, post.StateDeleted, deleted.State())
	assert.Equal(t, post.StateActive, active.State())
	assert.Equal(t, []string{"a", "b"}, active.Likes())
	assert.Equal(t, 2, active.LikesCount())
}

func TestNewCommentAdded(t *testing.T) {
	p := newPost(t)
	c, err := p.AddComment(params(commenter, "nice run"), now)
	require.NoError(t, err)

	evt := post.NewCommentAdded(p, c, "", "c@example.com", p.AuthorEmail(), now)

	assert.Equal(t, post.EventTypeCommentAdded, evt.EventType())
	assert.Equal(t, p.ID().String(), evt.AggregateID())
	assert.Equal(t, commenter, evt.ActorID())
	assert.Equal(t, "owner@example.com", evt.RecipientEmail)
	assert.Equal(t, "nice run", evt.Text)
}
