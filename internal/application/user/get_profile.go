package user

import (
	"context"
)

// GetProfileUseCase returns the caller's own profile
type GetProfileUseCase struct {
	resolver *Resolver
}

// NewGetProfileUseCase создает GetProfileUseCase
func NewGetProfileUseCase(repo QueryRepository) *GetProfileUseCase {
	return &GetProfileUseCase{resolver: NewResolver(repo)}
}

// Execute выполняет запрос
func (uc *GetProfileUseCase) Execute(ctx context.Context, query GetProfileQuery) (Result, error) {
	usr, err := uc.resolver.Resolve(ctx, query.SubjectID)
	if err != nil {
		return Result{}, err
	}
	return newResult(usr), nil
}
