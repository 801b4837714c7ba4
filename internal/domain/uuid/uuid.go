package uuid

import (
	"github.com/google/uuid"
)

// UUID is the string form of document identifiers (posts, comments, replies, users).
type UUID string

// NewUUID генерирует новый идентификатор
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID validates s and returns it as UUID
func ParseUUID(s string) (UUID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return UUID(s), nil
}

func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the identifier is unset
func (u UUID) IsZero() bool {
	return u == ""
}
