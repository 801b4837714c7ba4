package appcore

import (
	"context"
)

// Context keys
type contextKey string

const (
	subjectIDKey contextKey = "subjectID"
	requestIDKey contextKey = "requestID"
)

// WithSubjectID stores the verified token subject
func WithSubjectID(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectIDKey, subjectID)
}

// SubjectID returns the verified token subject, empty for anonymous calls
func SubjectID(ctx context.Context) string {
	s, _ := ctx.Value(subjectIDKey).(string)
	return s
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID extracts the request ID, empty when not set
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
