package httphandler

import (
	"time"

	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/domain/user"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID          string   `json:"id"`
	SubjectID   string   `json:"subjectId"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio"`
	Habits      string   `json:"habits"`
	PhotoURL    string   `json:"photoUrl"`
	Coins       int      `json:"coins"`
	Badges      []string `json:"badges"`
	CreatedAt   string   `json:"createdAt"`
}

// PostResponse is a post with its whole thread.
type PostResponse struct {
	ID             string            `json:"id"`
	PostType       string            `json:"postType"`
	OwnerSubjectID string            `json:"ownerSubjectId"`
	AuthorName     string            `json:"authorName"`
	AuthorEmail    string            `json:"authorEmail"`
	Caption        string            `json:"caption"`
	MediaURL       string            `json:"mediaUrl"`
	Likes          []string          `json:"likes"`
	LikesCount     int               `json:"likesCount"`
	CreatedAt      string            `json:"createdAt"`
	Comments       []CommentResponse `json:"comments"`
}

// CommentResponse is a comment or reply. Owner and email are null once deleted.
type CommentResponse struct {
	CommentID      string            `json:"commentId"`
	OwnerSubjectID *string           `json:"ownerSubjectId"`
	AuthorName     string            `json:"authorName"`
	Text           string            `json:"text"`
	Email          *string           `json:"email"`
	Likes          []string          `json:"likes"`
	LikesCount     int               `json:"likesCount"`
	CreatedAt      string            `json:"createdAt"`
	Replies        []CommentResponse `json:"replies,omitempty"`
}

// BadgeResponse is a shop entry.
type BadgeResponse struct {
	ID       string `json:"id"`
	ImageURL string `json:"imageUrl"`
	Cost     int    `json:"cost"`
}

// CategoryResponse is a habit category.
type CategoryResponse struct {
	ID       string `json:"id"`
	PostType string `json:"postType"`
	Title    string `json:"title"`
	Caption  string `json:"caption"`
	MediaURL string `json:"mediaUrl"`
}

// ToUserResponse converts a domain User to UserResponse.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID().String(),
		SubjectID:   u.SubjectID(),
		Email:       u.Email(),
		DisplayName: u.DisplayName(),
		Bio:         u.Bio(),
		Habits:      u.Habits(),
		PhotoURL:    u.PhotoURL(),
		Coins:       u.Coins(),
		Badges:      u.Badges(),
		CreatedAt:   u.CreatedAt().Format(time.RFC3339),
	}
}

// ToPostResponse converts a Post and its thread.
func ToPostResponse(p *post.Post) PostResponse {
	comments := p.Comments()
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	return PostResponse{
		ID:             p.ID().String(),
		PostType:       p.PostType(),
		OwnerSubjectID: p.OwnerSubjectID(),
		AuthorName:     p.AuthorName(),
		AuthorEmail:    p.AuthorEmail(),
		Caption:        p.Caption(),
		MediaURL:       p.MediaURL(),
		Likes:          p.Likes(),
		LikesCount:     p.LikesCount(),
		CreatedAt:      p.CreatedAt().Format(time.RFC3339),
		Comments:       out,
	}
}

func toCommentResponse(c *post.Comment) CommentResponse {
	resp := CommentResponse{
		CommentID:      c.ID().String(),
		OwnerSubjectID: c.OwnerSubjectID(),
		AuthorName:     c.AuthorName(),
		Text:           c.Text(),
		Email:          c.Email(),
		Likes:          c.Likes(),
		LikesCount:     c.LikesCount(),
		CreatedAt:      c.CreatedAt().Format(time.RFC3339),
	}
	if !c.IsReply() {
		replies := c.Replies()
		resp.Replies = make([]CommentResponse, 0, len(replies))
		for _, r := range replies {
			resp.Replies = append(resp.Replies, toCommentResponse(r))
		}
	}
	return resp
}

// ToPostResponses converts a feed.
func ToPostResponses(posts []*post.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, ToPostResponse(p))
	}
	return out
}

// ToBadgeResponses converts the badge catalog.
func ToBadgeResponses(badges []badge.Badge) []BadgeResponse {
	out := make([]BadgeResponse, 0, len(badges))
	for _, b := range badges {
		out = append(out, BadgeResponse{ID: b.ID, ImageURL: b.ImageURL, Cost: b.Cost})
	}
	return out
}

// ToCategoryResponses converts the category catalog.
func ToCategoryResponses(categories []category.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{
			ID:       c.ID,
			PostType: c.PostType,
			Title:    c.Title,
			Caption:  c.Caption,
			MediaURL: c.MediaURL,
		})
	}
	return out
}
