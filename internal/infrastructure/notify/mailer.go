// Package notify sends user-facing notifications out of band.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
)

// ErrNoRecipient is returned when a message has no address
var ErrNoRecipient = errors.New("notification has no recipient")

// Message - письмо для одного получателя
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ReplyMessage builds the "someone replied" mail sent to a post author.
func ReplyMessage(to, commenterName, text string) Message {
	return Message{
		To:       to,
		Subject:  fmt.Sprintf("%s Replied to You!", commenterName),
		TextBody: fmt.Sprintf("%s commented on your post:\n\n%s", commenterName, text),
		HTMLBody: fmt.Sprintf("<p><strong>%s</strong> commented on your post:</p><blockquote>%s</blockquote>",
			html.EscapeString(commenterName), html.EscapeString(text)),
	}
}

// LogMailer writes messages to the log instead of an SMTP relay.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	m.logger.InfoContext(ctx, "notification mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
