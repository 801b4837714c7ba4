package thread

import "github.com/lllypuk/styx/internal/domain/uuid"

// AddCommentCommand appends a comment, or a reply when ParentID is set
type AddCommentCommand struct {
	SubjectID      string
	PostID         uuid.UUID
	ParentID       uuid.UUID // optional
	Text           string
	AuthorName     string
	CommenterEmail string
	PostEmail      string // notification recipient
}

// EditCommentCommand rewrites a comment or reply
type EditCommentCommand struct {
	SubjectID string
	PostID    uuid.UUID
	CommentID uuid.UUID
	ReplyID   uuid.UUID // optional
	Text      string
}

// DeleteCommentCommand tombstones a comment or reply
type DeleteCommentCommand struct {
	SubjectID string
	PostID    uuid.UUID
	CommentID uuid.UUID
	ReplyID   uuid.UUID // optional
}

// ToggleLikeCommand flips the caller's like on a post, comment or reply
type ToggleLikeCommand struct {
	SubjectID string
	PostID    uuid.UUID
	CommentID uuid.UUID // optional
	ReplyID   uuid.UUID // optional
}

// AddCommentResult identifies the stored node
type AddCommentResult struct {
	PostID    uuid.UUID
	CommentID uuid.UUID
	ParentID  uuid.UUID
	Version   int64
}

// LikeResult is the like state of the target after the toggle
type LikeResult struct {
	Kind       string
	Liked      bool
	LikesCount int
	Likes      []string
}
