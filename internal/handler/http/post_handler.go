package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/appcore"
	postapp "github.com/lllypuk/styx/internal/application/post"
	"github.com/lllypuk/styx/internal/application/thread"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// CreatePostRequest represents the request to create a post.
type CreatePostRequest struct {
	PostType string `json:"postType"`
	Caption  string `json:"caption"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	MediaURL string `json:"mediaUrl"`
}

// CreatePostResponse carries the new post id.
type CreatePostResponse struct {
	Message string `json:"message"`
	PostID  string `json:"postId"`
}

// AttachMediaRequest sets the post media url.
type AttachMediaRequest struct {
	MediaURL string `json:"mediaUrl"`
}

// LikeRequest addresses a post, a comment or a reply.
type LikeRequest struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId"`
}

// LikeResponse is the target's like state after the toggle.
type LikeResponse struct {
	LikesCount int      `json:"likesCount"`
	Likes      []string `json:"likes"`
}

// PostDeleter removes a post owned by the caller.
type PostDeleter interface {
	Execute(ctx context.Context, cmd postapp.DeletePostCommand) error
}

// LikeToggler flips the caller's like on a target.
type LikeToggler interface {
	ToggleLike(ctx context.Context, cmd thread.ToggleLikeCommand) (thread.LikeResult, error)
}

// PostHandler handles the feed and post lifecycle.
type PostHandler struct {
	list   appcore.UseCase[postapp.ListPostsQuery, []*postdomain.Post]
	create appcore.UseCase[postapp.CreatePostCommand, *postdomain.Post]
	remove PostDeleter
	attach appcore.UseCase[postapp.AttachMediaCommand, *postdomain.Post]
	likes  LikeToggler
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(
	list appcore.UseCase[postapp.ListPostsQuery, []*postdomain.Post],
	create appcore.UseCase[postapp.CreatePostCommand, *postdomain.Post],
	remove PostDeleter,
	attach appcore.UseCase[postapp.AttachMediaCommand, *postdomain.Post],
	likes LikeToggler,
) *PostHandler {
	return &PostHandler{list: list, create: create, remove: remove, attach: attach, likes: likes}
}

// RegisterRoutes registers post routes with the router.
// Static segments (/posts/like, /posts/media/:postId) win over /posts/:postType in echo's router.
func (h *PostHandler) RegisterRoutes(r *httpserver.Router) {
	r.Public().GET("/posts/:postType", h.List)

	r.Auth().POST("/posts", h.Create)
	r.Auth().DELETE("/posts/:postId", h.Delete)
	r.Auth().PUT("/posts/media/:postId", h.AttachMedia)
	r.Auth().PUT("/posts/like", h.ToggleLike)
}

// List handles GET /api/posts/:postType.
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.list.Execute(c.Request().Context(), postapp.ListPostsQuery{PostType: c.Param("postType")})
	if err != nil {
		return httpserver.RespondError(c, err)
	}
	return httpserver.RespondOK(c, ToPostResponses(posts))
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	p, err := h.create.Execute(c.Request().Context(), postapp.CreatePostCommand{
		SubjectID:   subject,
		PostType:    req.PostType,
		Caption:     req.Caption,
		AuthorName:  req.Name,
		AuthorEmail: req.Email,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, CreatePostResponse{
		Message: "Post created successfully.",
		PostID:  p.ID().String(),
	})
}

// Delete handles DELETE /api/posts/:postId.
func (h *PostHandler) Delete(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	postID, valid := parseID(c.Param("postId"))
	if !valid {
		return respondInvalidID(c, "postId")
	}

	if err := h.remove.Execute(c.Request().Context(), postapp.DeletePostCommand{
		SubjectID: subject,
		PostID:    postID,
	}); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, MessageResponse{Message: "Post deleted successfully."})
}

// AttachMedia handles PUT /api/posts/media/:postId.
func (h *PostHandler) AttachMedia(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	postID, valid := parseID(c.Param("postId"))
	if !valid {
		return respondInvalidID(c, "postId")
	}

	var req AttachMediaRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	if _, err := h.attach.Execute(c.Request().Context(), postapp.AttachMediaCommand{
		SubjectID: subject,
		PostID:    postID,
		MediaURL:  req.MediaURL,
	}); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, MessageResponse{Message: "Post media updated successfully."})
}

// ToggleLike handles PUT /api/posts/like.
func (h *PostHandler) ToggleLike(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	postID, valid := parseID(req.PostID)
	if !valid {
		return respondInvalidID(c, "postId")
	}
	commentID, valid := parseOptionalID(req.CommentID)
	if !valid {
		return respondInvalidID(c, "commentId")
	}
	replyID, valid := parseOptionalID(req.ReplyID)
	if !valid {
		return respondInvalidID(c, "replyId")
	}

	result, err := h.likes.ToggleLike(c.Request().Context(), thread.ToggleLikeCommand{
		SubjectID: subject,
		PostID:    postID,
		CommentID: commentID,
		ReplyID:   replyID,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, LikeResponse{LikesCount: result.LikesCount, Likes: result.Likes})
}
