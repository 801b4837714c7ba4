package post

import (
	"time"

	"github.com/lllypuk/styx/internal/domain/event"
)

const (
	// EventTypeCommentAdded is published after a comment or reply is stored
	EventTypeCommentAdded = "post.comment_added"
)

// CommentAdded notifies the post author that someone joined their thread
type CommentAdded struct {
	event.BaseEvent

	CommentID      string `json:"commentId"`
	ParentID       string `json:"parentId,omitempty"`
	CommenterName  string `json:"commenterName"`
	CommenterEmail string `json:"commenterEmail"`
	RecipientEmail string `json:"recipientEmail"`
	Text           string `json:"text"`
}

// NewCommentAdded builds the event for a freshly appended node.
// parentID is empty for a top-level comment.
func NewCommentAdded(p *Post, c *Comment, parentID, commenterEmail, recipientEmail string, now time.Time) CommentAdded {
	actor := ""
	if c.ownerSubjectID != nil {
		actor = *c.ownerSubjectID
	}
	return CommentAdded{
		BaseEvent:      event.NewBaseEvent(EventTypeCommentAdded, p.id.String(), actor, now),
		CommentID:      c.id.String(),
		ParentID:       parentID,
		CommenterName:  c.authorName,
		CommenterEmail: commenterEmail,
		RecipientEmail: recipientEmail,
		Text:           c.text,
	}
}
