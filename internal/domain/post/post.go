// Package post holds the Post aggregate: a post with its comment thread, read and written as one document.
package post

import (
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

// Post is the aggregate root. Comments and replies live only inside it.
type Post struct {
	id             uuid.UUID
	postType       string
	ownerSubjectID string // immutable after creation
	authorName     string
	authorEmail    string
	caption        string
	mediaURL       string
	likes          likeSet
	createdAt      time.Time
	comments       []*Comment
	version        int64
}

// NewPostParams - данные для создания поста
type NewPostParams struct {
	PostType       string
	OwnerSubjectID string
	AuthorName     string
	AuthorEmail    string
	Caption        string
	MediaURL       string
}

// NewPost creates a post with an empty thread
func NewPost(p NewPostParams, now time.Time) (*Post, error) {
	for _, v := range []string{p.PostType, p.OwnerSubjectID, p.AuthorName, p.AuthorEmail, p.Caption} {
		if strings.TrimSpace(v) == "" {
			return nil, errs.ErrInvalidInput
		}
	}

	return &Post{
		id:             uuid.NewUUID(),
		postType:       p.PostType,
		ownerSubjectID: p.OwnerSubjectID,
		authorName:     p.AuthorName,
		authorEmail:    p.AuthorEmail,
		caption:        p.Caption,
		mediaURL:       p.MediaURL,
		createdAt:      now.UTC(),
		comments:       []*Comment{},
	}, nil
}

// Reconstruct восстанавливает post from storage
func Reconstruct(
	id uuid.UUID,
	postType, ownerSubjectID, authorName, authorEmail, caption, mediaURL string,
	likes []string,
	createdAt time.Time,
	comments []*Comment,
	version int64,
) *Post {
	if comments == nil {
		comments = []*Comment{}
	}
	return &Post{
		id:             id,
		postType:       postType,
		ownerSubjectID: ownerSubjectID,
		authorName:     authorName,
		authorEmail:    authorEmail,
		caption:        caption,
		mediaURL:       mediaURL,
		likes:          newLikeSet(likes),
		createdAt:      createdAt,
		comments:       comments,
		version:        version,
	}
}

// Getters

func (p *Post) ID() uuid.UUID            { return p.id }
func (p *Post) PostType() string         { return p.postType }
func (p *Post) OwnerSubjectID() string   { return p.ownerSubjectID }
func (p *Post) AuthorName() string       { return p.authorName }
func (p *Post) AuthorEmail() string      { return p.authorEmail }
func (p *Post) Caption() string          { return p.caption }
func (p *Post) MediaURL() string         { return p.mediaURL }
func (p *Post) CreatedAt() time.Time     { return p.createdAt }
func (p *Post) Version() int64           { return p.version }
func (p *Post) Likes() []string          { return p.likes.members() }
func (p *Post) LikesCount() int          { return p.likes.count() }
func (p *Post) ToggleLike(s string) bool { return p.likes.toggle(s) }

// MarkPersisted records the version the store now holds
func (p *Post) MarkPersisted(version int64) {
	p.version = version
}

// Comments returns top-level comments in insertion order
func (p *Post) Comments() []*Comment {
	return slices.Clone(p.comments)
}

// Resolve walks post -> comment -> reply and stops at the first empty id.
func (p *Post) Resolve(ref TargetRef) (Target, error) {
	if ref.CommentID.IsZero() {
		if !ref.ReplyID.IsZero() {
			return Target{}, ErrReplyWithoutComment
		}
		return Target{Kind: TargetPost, Post: p}, nil
	}

	comment := p.findComment(ref.CommentID)
	if comment == nil {
		return Target{}, ErrCommentNotFound
	}
	if ref.ReplyID.IsZero() {
		return Target{Kind: TargetComment, Post: p, Comment: comment}, nil
	}

	reply := comment.findReply(ref.ReplyID)
	if reply == nil {
		return Target{}, ErrReplyNotFound
	}
	return Target{Kind: TargetReply, Post: p, Comment: comment, Reply: reply}, nil
}

// AddComment appends a top-level comment
func (p *Post) AddComment(params CommentParams, now time.Time) (*Comment, error) {
	c, err := newComment(params, false, now)
	if err != nil {
		return nil, err
	}
	p.comments = append(p.comments, c)
	return c, nil
}

// AddReply appends a reply under an existing top-level comment
func (p *Post) AddReply(commentID uuid.UUID, params CommentParams, now time.Time) (*Comment, error) {
	comment := p.findComment(commentID)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment.appendReply(params, now)
}

// EditComment rewrites the text of a comment or reply owned by actor
func (p *Post) EditComment(actor string, ref TargetRef, text string) (*Comment, error) {
	node, err := p.resolveNode(ref)
	if err != nil {
		return nil, err
	}
	if err = node.edit(actor, text); err != nil {
		return nil, err
	}
	return node, nil
}

// DeleteComment tombstones a comment or reply owned by actor. The node stays in the thread.
func (p *Post) DeleteComment(actor string, ref TargetRef) (*Comment, error) {
	node, err := p.resolveNode(ref)
	if err != nil {
		return nil, err
	}
	if err = node.softDelete(actor); err != nil {
		return nil, err
	}
	return node, nil
}

// ToggleLikeOn flips actor's like on the addressed node. Any authenticated subject may like.
func (p *Post) ToggleLikeOn(actor string, ref TargetRef) (Likeable, error) {
	if actor == "" {
		return nil, errs.ErrInvalidInput
	}
	target, err := p.Resolve(ref)
	if err != nil {
		return nil, err
	}
	l := target.Likeable()
	l.ToggleLike(actor)
	return l, nil
}

// AttachMedia sets the media url; only the post owner may do it
func (p *Post) AttachMedia(actor, mediaURL string) error {
	if strings.TrimSpace(mediaURL) == "" {
		return errs.ErrInvalidInput
	}
	if !p.CanBeMutatedBy(actor) {
		return ErrNotOwner
	}
	p.mediaURL = mediaURL
	return nil
}

// CanBeMutatedBy reports whether actor owns the post
func (p *Post) CanBeMutatedBy(actor string) bool {
	owner := p.ownerSubjectID
	return CanMutate(actor, &owner)
}

// resolveNode is Resolve restricted to comments and replies
func (p *Post) resolveNode(ref TargetRef) (*Comment, error) {
	if ref.CommentID.IsZero() {
		if !ref.ReplyID.IsZero() {
			return nil, ErrReplyWithoutComment
		}
		return nil, errs.ErrInvalidInput
	}
	target, err := p.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return target.node(), nil
}

func (p *Post) findComment(id uuid.UUID) *Comment {
	for _, c := range p.comments {
		if c.id == id {
			return c
		}
	}
	return nil
}
