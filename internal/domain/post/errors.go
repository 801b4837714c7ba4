package post

import (
	"fmt"

	"github.com/lllypuk/styx/internal/domain/errs"
)

var (
	// ErrCommentNotFound is returned when the comment id is not in the post
	ErrCommentNotFound = fmt.Errorf("comment not found: %w", errs.ErrNotFound)

	// ErrReplyNotFound is returned when the reply id is not under the comment
	ErrReplyNotFound = fmt.Errorf("reply not found: %w", errs.ErrNotFound)

	// ErrReplyWithoutComment is returned when a reply id arrives with no comment id
	ErrReplyWithoutComment = fmt.Errorf("replyId requires commentId: %w", errs.ErrInvalidInput)

	// ErrNotOwner is returned when the acting subject does not own the node
	ErrNotOwner = fmt.Errorf("subject does not own the target: %w", errs.ErrUnauthorized)

	// ErrEmptyText is returned for blank comment text
	ErrEmptyText = fmt.Errorf("text is required: %w", errs.ErrInvalidInput)
)
