package post

import "github.com/lllypuk/styx/internal/domain/uuid"

// TargetKind tags which node of the thread a Target points at
type TargetKind int

const (
	TargetPost TargetKind = iota
	TargetComment
	TargetReply
)

func (k TargetKind) String() string {
	switch k {
	case TargetPost:
		return "post"
	case TargetComment:
		return "comment"
	case TargetReply:
		return "reply"
	default:
		return "unknown"
	}
}

// TargetRef addresses a node inside a post: empty ids stop the descent.
type TargetRef struct {
	CommentID uuid.UUID
	ReplyID   uuid.UUID
}

// Target is a resolved node. Exactly one of the pointers matching Kind is set.
type Target struct {
	Kind    TargetKind
	Post    *Post
	Comment *Comment
	Reply   *Comment
}

// Likeable returns the like capability of the resolved node
func (t Target) Likeable() Likeable {
	switch t.Kind {
	case TargetComment:
		return t.Comment
	case TargetReply:
		return t.Reply
	default:
		return t.Post
	}
}

// node returns the comment or reply the target resolved to, nil for a post
func (t Target) node() *Comment {
	switch t.Kind {
	case TargetComment:
		return t.Comment
	case TargetReply:
		return t.Reply
	default:
		return nil
	}
}
