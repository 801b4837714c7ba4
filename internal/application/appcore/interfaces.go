package appcore

import "context"

// UseCase is one application operation; handlers depend on this, never on the concrete use case
type UseCase[TCommand any, TResult any] interface {
	Execute(ctx context.Context, cmd TCommand) (TResult, error)
}

// Result carries an aggregate together with the version it was persisted at
type Result[T any] struct {
	Value   T
	Version int64
}
