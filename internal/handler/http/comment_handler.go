package httphandler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/lllypuk/styx/internal/application/thread"
	"github.com/lllypuk/styx/internal/domain/uuid"
	"github.com/lllypuk/styx/internal/infrastructure/httpserver"
)

// AddCommentRequest adds a comment, or a reply when commentId is set.
type AddCommentRequest struct {
	PostID         string `json:"postId"`
	CommentID      string `json:"commentId"`
	Text           string `json:"text"`
	CommenterEmail string `json:"commenterEmail"`
	PostEmail      string `json:"postEmail"`
	Name           string `json:"name"`
}

// AddCommentResponse identifies the new node.
type AddCommentResponse struct {
	Message   string `json:"message"`
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
}

// CommentTargetRequest addresses a comment, or a reply when replyId is set.
type CommentTargetRequest struct {
	PostID    string `json:"postId"`
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId"`
}

// EditCommentRequest rewrites a comment or reply.
type EditCommentRequest struct {
	CommentTargetRequest
	Text string `json:"text"`
}

// ThreadService mutates a post's comment thread.
type ThreadService interface {
	AddComment(ctx context.Context, cmd thread.AddCommentCommand) (thread.AddCommentResult, error)
	EditComment(ctx context.Context, cmd thread.EditCommentCommand) error
	DeleteComment(ctx context.Context, cmd thread.DeleteCommentCommand) error
}

// CommentHandler handles comment and reply mutations.
type CommentHandler struct {
	threads ThreadService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(threads ThreadService) *CommentHandler {
	return &CommentHandler{threads: threads}
}

// RegisterRoutes registers comment routes with the router.
func (h *CommentHandler) RegisterRoutes(r *httpserver.Router) {
	r.Auth().POST("/posts/comments", h.Add)
	r.Auth().PUT("/posts/comments", h.Edit)
	r.Auth().DELETE("/posts/comments", h.Delete)
}

// Add handles POST /api/posts/comments.
func (h *CommentHandler) Add(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req AddCommentRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	postID, valid := parseID(req.PostID)
	if !valid {
		return respondInvalidID(c, "postId")
	}
	parentID, valid := parseOptionalID(req.CommentID)
	if !valid {
		return respondInvalidID(c, "commentId")
	}

	result, err := h.threads.AddComment(c.Request().Context(), thread.AddCommentCommand{
		SubjectID:      subject,
		PostID:         postID,
		ParentID:       parentID,
		Text:           req.Text,
		AuthorName:     req.Name,
		CommenterEmail: req.CommenterEmail,
		PostEmail:      req.PostEmail,
	})
	if err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, AddCommentResponse{
		Message:   "Comment/reply added successfully.",
		PostID:    result.PostID.String(),
		CommentID: result.CommentID.String(),
	})
}

// Edit handles PUT /api/posts/comments.
func (h *CommentHandler) Edit(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req EditCommentRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	target, field, valid := req.parse()
	if !valid {
		return respondInvalidID(c, field)
	}

	if err := h.threads.EditComment(c.Request().Context(), thread.EditCommentCommand{
		SubjectID: subject,
		PostID:    target.post,
		CommentID: target.comment,
		ReplyID:   target.reply,
		Text:      req.Text,
	}); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, MessageResponse{Message: "Comment/reply edited successfully."})
}

// Delete handles DELETE /api/posts/comments.
func (h *CommentHandler) Delete(c echo.Context) error {
	subject, ok := requireSubject(c)
	if !ok {
		return respondUnauthorized(c)
	}

	var req CommentTargetRequest
	if err := c.Bind(&req); err != nil {
		return respondInvalidBody(c)
	}

	target, field, valid := req.parse()
	if !valid {
		return respondInvalidID(c, field)
	}

	if err := h.threads.DeleteComment(c.Request().Context(), thread.DeleteCommentCommand{
		SubjectID: subject,
		PostID:    target.post,
		CommentID: target.comment,
		ReplyID:   target.reply,
	}); err != nil {
		return httpserver.RespondError(c, err)
	}

	return httpserver.RespondOK(c, MessageResponse{Message: "Comment/reply deleted successfully."})
}

type threadTarget struct {
	post, comment, reply uuid.UUID
}

// parse validates ids; on failure it names the offending field
func (r CommentTargetRequest) parse() (threadTarget, string, bool) {
	var t threadTarget
	var ok bool
	if t.post, ok = parseID(r.PostID); !ok {
		return t, "postId", false
	}
	if t.comment, ok = parseID(r.CommentID); !ok {
		return t, "commentId", false
	}
	if t.reply, ok = parseOptionalID(r.ReplyID); !ok {
		return t, "replyId", false
	}
	return t, "", true
}
