package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lllypuk/styx/internal/domain/event"
	"github.com/lllypuk/styx/internal/domain/post"
	"github.com/lllypuk/styx/internal/infrastructure/notify"
)

// CommentNotificationHandler mails the post author when a comment lands on their post.
type CommentNotificationHandler struct {
	mailer notify.Mailer
	logger *slog.Logger
}

// CommentNotificationOption configures the handler
type CommentNotificationOption func(*CommentNotificationHandler)

// WithNotificationLogger sets the logger
func WithNotificationLogger(logger *slog.Logger) CommentNotificationOption {
	return func(h *CommentNotificationHandler) {
		h.logger = logger
	}
}

// NewCommentNotificationHandler creates a new handler
func NewCommentNotificationHandler(mailer notify.Mailer, opts ...CommentNotificationOption) *CommentNotificationHandler {
	h := &CommentNotificationHandler{
		mailer: mailer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is an EventHandler for post.comment_added
func (h *CommentNotificationHandler) Handle(ctx context.Context, evt event.DomainEvent) error {
	added, err := decodeCommentAdded(evt)
	if err != nil {
		// битый payload не чинится ретраями
		h.logger.ErrorContext(ctx, "cannot decode comment event", slog.String("error", err.Error()))
		return nil
	}

	if added.RecipientEmail == "" {
		return nil
	}
	// no mail to yourself
	if added.RecipientEmail == added.CommenterEmail {
		return nil
	}

	msg := notify.ReplyMessage(added.RecipientEmail, added.CommenterName, added.Text)
	if sendErr := h.mailer.Send(ctx, msg); sendErr != nil {
		return fmt.Errorf("send reply notification: %w", sendErr)
	}

	h.logger.DebugContext(ctx, "reply notification sent",
		slog.String("post_id", added.AggregateID()),
		slog.String("comment_id", added.CommentID),
	)
	return nil
}

// Register subscribes the handler on the bus
func (h *CommentNotificationHandler) Register(bus *RedisEventBus) error {
	return bus.Subscribe(post.EventTypeCommentAdded, h.Handle)
}

func decodeCommentAdded(evt event.DomainEvent) (post.CommentAdded, error) {
	switch e := evt.(type) {
	case post.CommentAdded:
		return e, nil
	case *post.CommentAdded:
		return *e, nil
	case PayloadEvent:
		var added post.CommentAdded
		if err := json.Unmarshal(e.Payload(), &added); err != nil {
			return post.CommentAdded{}, err
		}
		return added, nil
	default:
		return post.CommentAdded{}, fmt.Errorf("unexpected event %T", evt)
	}
}
