package user

import (
	"fmt"

	"github.com/lllypuk/styx/internal/domain/errs"
)

var (
	// ErrUserNotFound возникает когда пользователь не найден
	ErrUserNotFound = fmt.Errorf("user not found: %w", errs.ErrNotFound)

	// ErrUserAlreadyRegistered возникает при повторной регистрации того же subject
	ErrUserAlreadyRegistered = fmt.Errorf("user already registered: %w", errs.ErrAlreadyExists)
)
