package appcore

import (
	"context"
	"errors"

	"github.com/lllypuk/styx/internal/domain/errs"
)

// DefaultWriteAttempts bounds the read-modify-write loop when nothing is configured
const DefaultWriteAttempts = 3

// RetryOnConflict runs fn until it stops failing with errs.ErrConcurrentModification.
// fn must redo the whole read-modify-write: it re-reads the aggregate on every call.
// After attempts conflicts the result is ErrConcurrentUpdate.
func RetryOnConflict(ctx context.Context, attempts int, recorder Recorder, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultWriteAttempts
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}

	for range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if !errors.Is(err, errs.ErrConcurrentModification) {
			return err
		}
		recorder.WriteConflict()
	}

	return ErrConcurrentUpdate
}
