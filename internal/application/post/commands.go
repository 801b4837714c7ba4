package post

import "github.com/lllypuk/styx/internal/domain/uuid"

// CreatePostCommand - новый пост в категории
type CreatePostCommand struct {
	SubjectID   string
	PostType    string
	Caption     string
	AuthorName  string
	AuthorEmail string
	MediaURL    string // optional
}

// DeletePostCommand - удаление поста владельцем
type DeletePostCommand struct {
	SubjectID string
	PostID    uuid.UUID
}

// AttachMediaCommand - прикрепление медиа к посту
type AttachMediaCommand struct {
	SubjectID string
	PostID    uuid.UUID
	MediaURL  string
}

// ListPostsQuery - посты одной категории
type ListPostsQuery struct {
	PostType string
}
