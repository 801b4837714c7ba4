package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/user"
)

// RegisterUserUseCase обрабатывает регистрацию нового пользователя
type RegisterUserUseCase struct {
	userRepo Repository
}

// NewRegisterUserUseCase создает новый RegisterUserUseCase
func NewRegisterUserUseCase(userRepo Repository) *RegisterUserUseCase {
	return &RegisterUserUseCase{userRepo: userRepo}
}

// Execute выполняет регистрацию пользователя.
// A subject that is already registered is rejected; the unique index catches a racing duplicate.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, cmd RegisterUserCommand) (Result, error) {
	if err := uc.validate(cmd); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := uc.userRepo.FindBySubjectID(ctx, cmd.SubjectID)
	switch {
	case err == nil && existing != nil:
		return Result{}, ErrUserAlreadyRegistered
	case err != nil && !errors.Is(err, errs.ErrNotFound):
		return Result{}, fmt.Errorf("failed to check existing user: %w", err)
	}

	usr, err := user.NewUser(cmd.SubjectID, cmd.Email, cmd.DisplayName)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create user: %w", err)
	}

	if err = uc.userRepo.Insert(ctx, usr); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return Result{}, ErrUserAlreadyRegistered
		}
		return Result{}, fmt.Errorf("failed to save user: %w", err)
	}

	return newResult(usr), nil
}

func (uc *RegisterUserUseCase) validate(cmd RegisterUserCommand) error {
	return errors.Join(
		appcore.ValidateRequired("userId", cmd.SubjectID),
		appcore.ValidateRequired("email", cmd.Email),
		appcore.ValidateRequired("name", cmd.DisplayName),
	)
}
