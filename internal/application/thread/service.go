// Package thread mutates the comment thread of a post: append, edit, tombstone and like.
package thread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lllypuk/styx/internal/application/appcore"
	postapp "github.com/lllypuk/styx/internal/application/post"
	"github.com/lllypuk/styx/internal/domain/event"
	postdomain "github.com/lllypuk/styx/internal/domain/post"
)

// Thread mutation names reported to the recorder
const (
	OpAddComment = "add_comment"
	OpAddReply   = "add_reply"
	OpEdit       = "edit"
	OpDelete     = "delete"
	OpLike       = "like"
)

// Service executes thread mutations on top of the post mutator
type Service struct {
	mutator  *postapp.Mutator
	bus      event.Bus
	clock    appcore.Clock
	recorder appcore.Recorder
	logger   *slog.Logger
}

// Option configures Service
type Option func(*Service)

// WithClock injects the time source
func WithClock(clock appcore.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r appcore.Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService создает Service. bus may be nil when notifications are disabled.
func NewService(mutator *postapp.Mutator, bus event.Bus, opts ...Option) *Service {
	s := &Service{
		mutator:  mutator,
		bus:      bus,
		clock:    appcore.SystemClock,
		recorder: appcore.NopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddComment appends a top-level comment or a reply and notifies the post author
func (s *Service) AddComment(ctx context.Context, cmd AddCommentCommand) (AddCommentResult, error) {
	if err := errors.Join(
		appcore.ValidateRequired("subjectId", cmd.SubjectID),
		appcore.ValidateID("postId", cmd.PostID),
		appcore.ValidateRequired("text", cmd.Text),
		appcore.ValidateRequired("commenterEmail", cmd.CommenterEmail),
		appcore.ValidateRequired("postEmail", cmd.PostEmail),
		appcore.ValidateRequired("name", cmd.AuthorName),
	); err != nil {
		return AddCommentResult{}, fmt.Errorf("validation failed: %w", err)
	}

	params := postdomain.CommentParams{
		OwnerSubjectID: cmd.SubjectID,
		AuthorName:     cmd.AuthorName,
		Email:          cmd.CommenterEmail,
		Text:           cmd.Text,
	}

	var added *postdomain.Comment
	p, err := s.mutator.Apply(ctx, cmd.PostID, func(p *postdomain.Post) error {
		var err error
		if cmd.ParentID.IsZero() {
			added, err = p.AddComment(params, s.clock())
		} else {
			added, err = p.AddReply(cmd.ParentID, params, s.clock())
		}
		return err
	})
	if err != nil {
		return AddCommentResult{}, err
	}

	op := OpAddComment
	if !cmd.ParentID.IsZero() {
		op = OpAddReply
	}
	s.recorder.ThreadMutation(op)
	s.notify(ctx, postdomain.NewCommentAdded(p, added, cmd.ParentID.String(), cmd.CommenterEmail, cmd.PostEmail, s.clock()))

	return AddCommentResult{
		PostID:    p.ID(),
		CommentID: added.ID(),
		ParentID:  cmd.ParentID,
		Version:   p.Version(),
	}, nil
}

// EditComment rewrites the text of the caller's own comment or reply
func (s *Service) EditComment(ctx context.Context, cmd EditCommentCommand) error {
	if err := errors.Join(
		appcore.ValidateID("postId", cmd.PostID),
		appcore.ValidateID("commentId", cmd.CommentID),
		appcore.ValidateRequired("text", cmd.Text),
	); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ref := postdomain.TargetRef{CommentID: cmd.CommentID, ReplyID: cmd.ReplyID}
	_, err := s.mutator.Apply(ctx, cmd.PostID, func(p *postdomain.Post) error {
		_, err := p.EditComment(cmd.SubjectID, ref, cmd.Text)
		return err
	})
	if err != nil {
		return err
	}
	s.recorder.ThreadMutation(OpEdit)
	return nil
}

// DeleteComment tombstones the caller's own comment or reply
func (s *Service) DeleteComment(ctx context.Context, cmd DeleteCommentCommand) error {
	if err := errors.Join(
		appcore.ValidateID("postId", cmd.PostID),
		appcore.ValidateID("commentId", cmd.CommentID),
	); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ref := postdomain.TargetRef{CommentID: cmd.CommentID, ReplyID: cmd.ReplyID}
	_, err := s.mutator.Apply(ctx, cmd.PostID, func(p *postdomain.Post) error {
		_, err := p.DeleteComment(cmd.SubjectID, ref)
		return err
	})
	if err != nil {
		return err
	}
	s.recorder.ThreadMutation(OpDelete)
	return nil
}

// ToggleLike flips the caller's like on the addressed node
func (s *Service) ToggleLike(ctx context.Context, cmd ToggleLikeCommand) (LikeResult, error) {
	if err := errors.Join(
		appcore.ValidateRequired("subjectId", cmd.SubjectID),
		appcore.ValidateID("postId", cmd.PostID),
	); err != nil {
		return LikeResult{}, fmt.Errorf("validation failed: %w", err)
	}
	if cmd.CommentID.IsZero() && !cmd.ReplyID.IsZero() {
		return LikeResult{}, postdomain.ErrReplyWithoutComment
	}

	ref := postdomain.TargetRef{CommentID: cmd.CommentID, ReplyID: cmd.ReplyID}
	var result LikeResult
	_, err := s.mutator.Apply(ctx, cmd.PostID, func(p *postdomain.Post) error {
		target, err := p.Resolve(ref)
		if err != nil {
			return err
		}
		l := target.Likeable()
		liked := l.ToggleLike(cmd.SubjectID)
		result = LikeResult{
			Kind:       target.Kind.String(),
			Liked:      liked,
			LikesCount: l.LikesCount(),
			Likes:      slices.Clone(l.Likes()),
		}
		return nil
	})
	if err != nil {
		return LikeResult{}, err
	}
	s.recorder.ThreadMutation(OpLike)
	return result, nil
}

// notify publishes after the write; the comment is already stored so failures are only logged
func (s *Service) notify(ctx context.Context, evt postdomain.CommentAdded) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish comment notification",
			slog.String("post_id", evt.AggregateID()),
			slog.String("comment_id", evt.CommentID),
			slog.String("error", err.Error()),
		)
	}
}
