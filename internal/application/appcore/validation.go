package appcore

import (
	"strings"

	"github.com/lllypuk/styx/internal/domain/uuid"
)

// ValidateRequired проверяет, что строка не пустая
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateID проверяет, что идентификатор задан
func ValidateID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidatePositive проверяет, что число положительное
func ValidatePositive(field string, value int) error {
	if value <= 0 {
		return NewValidationError(field, "must be positive")
	}
	return nil
}

