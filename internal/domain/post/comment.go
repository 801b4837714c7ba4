package post

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// NodeState is the lifecycle of a comment or reply
type NodeState string

const (
	// StateActive - узел виден и может редактироваться владельцем
	StateActive NodeState = "active"
	// StateDeleted is terminal: identity scrubbed, text replaced by a tombstone
	StateDeleted NodeState = "deleted"
)

const (
	CommentTombstone   = "*this comment was deleted by the user*"
	ReplyTombstone     = "*this reply was deleted by the user*"
	ScrubbedAuthorName = "User"
	EditedSuffix       = " (edited)"
)

// Comment is a node of the thread. A reply has the same shape and never has replies of its own.
type Comment struct {
	id             uuid.UUID
	ownerSubjectID *string
	authorName     string
	text           string
	email          *string
	likes          likeSet
	createdAt      time.Time
	state          NodeState
	isReply        bool
	replies        []*Comment
}

// CommentParams holds what a caller supplies to append a comment or reply
type CommentParams struct {
	OwnerSubjectID string
	AuthorName     string
	Email          string
	Text           string
}

func newComment(p CommentParams, isReply bool, now time.Time) (*Comment, error) {
	if strings.TrimSpace(p.Text) == "" {
		return nil, ErrEmptyText
	}
	if p.OwnerSubjectID == "" {
		return nil, errs.ErrInvalidInput
	}

	owner := p.OwnerSubjectID
	c := &Comment{
		id:             uuid.NewUUID(),
		ownerSubjectID: &owner,
		authorName:     p.AuthorName,
		text:           p.Text,
		createdAt:      now.UTC(),
		state:          StateActive,
		isReply:        isReply,
		replies:        []*Comment{},
	}
	if p.Email != "" {
		email := p.Email
		c.email = &email
	}
	return c, nil
}

// ReconstructComment восстанавливает comment или reply from storage
func ReconstructComment(
	id uuid.UUID,
	ownerSubjectID *string,
	authorName, text string,
	email *string,
	likes []string,
	createdAt time.Time,
	state NodeState,
	isReply bool,
	replies []*Comment,
) *Comment {
	if state == "" {
		state = inferState(ownerSubjectID, text)
	}
	if isReply || replies == nil {
		replies = []*Comment{}
	}
	for _, r := range replies {
		r.isReply = true
	}
	return &Comment{
		id:             id,
		ownerSubjectID: ownerSubjectID,
		authorName:     authorName,
		text:           text,
		email:          email,
		likes:          newLikeSet(likes),
		createdAt:      createdAt,
		state:          state,
		isReply:        isReply,
		replies:        replies,
	}
}

// documents written before the state field existed only carry the scrubbed fields
func inferState(owner *string, text string) NodeState {
	if owner == nil && (text == CommentTombstone || text == ReplyTombstone) {
		return StateDeleted
	}
	return StateActive
}

func (c *Comment) ID() uuid.UUID            { return c.id }
func (c *Comment) OwnerSubjectID() *string  { return c.ownerSubjectID }
func (c *Comment) AuthorName() string       { return c.authorName }
func (c *Comment) Text() string             { return c.text }
func (c *Comment) Email() *string           { return c.email }
func (c *Comment) CreatedAt() time.Time     { return c.createdAt }
func (c *Comment) State() NodeState         { return c.state }
func (c *Comment) IsReply() bool            { return c.isReply }
func (c *Comment) IsDeleted() bool          { return c.state == StateDeleted }
func (c *Comment) Likes() []string          { return c.likes.members() }
func (c *Comment) LikesCount() int          { return c.likes.count() }
func (c *Comment) ToggleLike(s string) bool { return c.likes.toggle(s) }

// Replies returns the direct replies in insertion order
func (c *Comment) Replies() []*Comment {
	return slices.Clone(c.replies)
}

func (c *Comment) findReply(id uuid.UUID) *Comment {
	for _, r := range c.replies {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (c *Comment) appendReply(p CommentParams, now time.Time) (*Comment, error) {
	if c.isReply {
		return nil, fmt.Errorf("replies cannot be nested: %w", errs.ErrInvalidInput)
	}
	r, err := newComment(p, true, now)
	if err != nil {
		return nil, err
	}
	c.replies = append(c.replies, r)
	return r, nil
}

// edit is the Active -> Active transition
func (c *Comment) edit(actor, text string) error {
	if !CanMutate(actor, c.ownerSubjectID) {
		return ErrNotOwner
	}
	if c.state != StateActive {
		return errs.ErrInvalidTransition
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	c.text = text + EditedSuffix
	return nil
}

// softDelete is the Active -> Deleted transition. Nothing leaves Deleted.
func (c *Comment) softDelete(actor string) error {
	if !CanMutate(actor, c.ownerSubjectID) {
		return ErrNotOwner
	}
	if c.state != StateActive {
		return errs.ErrInvalidTransition
	}

	c.text = CommentTombstone
	if c.isReply {
		c.text = ReplyTombstone
	}
	c.ownerSubjectID = nil
	c.email = nil
	c.authorName = ScrubbedAuthorName
	c.state = StateDeleted
	return nil
}
