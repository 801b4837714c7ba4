package user

import (
	"context"
	"fmt"

	"github.com/lllypuk/styx/internal/application/appcore"
	"github.com/lllypuk/styx/internal/domain/user"
)

// UpdateProfileUseCase merges display name, bio and habits
type UpdateProfileUseCase struct {
	updater *Updater
}

// NewUpdateProfileUseCase создает UpdateProfileUseCase
func NewUpdateProfileUseCase(updater *Updater) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{updater: updater}
}

// Execute выполняет обновление профиля
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, cmd UpdateProfileCommand) (Result, error) {
	if err := appcore.ValidateRequired("subjectId", cmd.SubjectID); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	usr, err := uc.updater.Apply(ctx, cmd.SubjectID, func(u *user.User) error {
		u.UpdateProfile(cmd.DisplayName, cmd.Bio, cmd.Habits)
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return newResult(usr), nil
}

// UpdatePhotoUseCase replaces the profile photo url
type UpdatePhotoUseCase struct {
	updater *Updater
}

// NewUpdatePhotoUseCase создает UpdatePhotoUseCase
func NewUpdatePhotoUseCase(updater *Updater) *UpdatePhotoUseCase {
	return &UpdatePhotoUseCase{updater: updater}
}

// Execute выполняет смену фото
func (uc *UpdatePhotoUseCase) Execute(ctx context.Context, cmd UpdatePhotoCommand) (Result, error) {
	if err := appcore.ValidateRequired("photoUrl", cmd.PhotoURL); err != nil {
		return Result{}, fmt.Errorf("validation failed: %w", err)
	}

	usr, err := uc.updater.Apply(ctx, cmd.SubjectID, func(u *user.User) error {
		return u.SetPhoto(cmd.PhotoURL)
	})
	if err != nil {
		return Result{}, err
	}
	return newResult(usr), nil
}
