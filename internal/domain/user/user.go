// Package user models the community member: profile fields, coin balance and owned badges.
package user

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/styx/internal/domain/errs"
	"github.com/lllypuk/styx/internal/domain/uuid"
)

var (
	// ErrBadgeOwned is returned when the user already has the badge
	ErrBadgeOwned = fmt.Errorf("badge already owned: %w", errs.ErrAlreadyExists)

	// ErrInsufficientFunds is returned when coins do not cover the badge cost
	ErrInsufficientFunds = fmt.Errorf("not enough coins: %w", errs.ErrInsufficientFunds)
)

// User is a registered member keyed by the identity provider subject.
type User struct {
	id          uuid.UUID
	subjectID   string // sub claim, opaque and case-sensitive
	email       string
	displayName string
	bio         string
	habits      string
	photoURL    string
	coins       int
	badges      []string // image URLs, no duplicates
	createdAt   time.Time
	version     int64
}

// NewUser creates нового user at registration
func NewUser(subjectID, email, displayName string) (*User, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, errs.ErrInvalidInput
	}
	if strings.TrimSpace(email) == "" {
		return nil, errs.ErrInvalidInput
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, errs.ErrInvalidInput
	}

	return &User{
		id:          uuid.NewUUID(),
		subjectID:   subjectID,
		email:       email,
		displayName: displayName,
		badges:      []string{},
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct восстанавливает user from storage
func Reconstruct(
	id uuid.UUID,
	subjectID, email, displayName, bio, habits, photoURL string,
	coins int,
	badges []string,
	createdAt time.Time,
	version int64,
) *User {
	if badges == nil {
		badges = []string{}
	}
	return &User{
		id:          id,
		subjectID:   subjectID,
		email:       email,
		displayName: displayName,
		bio:         bio,
		habits:      habits,
		photoURL:    photoURL,
		coins:       coins,
		badges:      badges,
		createdAt:   createdAt,
		version:     version,
	}
}

// Getters

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) SubjectID() string    { return u.subjectID }
func (u *User) Email() string        { return u.email }
func (u *User) DisplayName() string  { return u.displayName }
func (u *User) Bio() string          { return u.bio }
func (u *User) Habits() string       { return u.habits }
func (u *User) PhotoURL() string     { return u.photoURL }
func (u *User) Coins() int           { return u.coins }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Version returns the stored document version the user was read at
func (u *User) Version() int64 { return u.version }

// MarkPersisted records the version the store now holds
func (u *User) MarkPersisted(version int64) {
	u.version = version
}

// Badges returns a copy of the owned badge URLs
func (u *User) Badges() []string {
	return slices.Clone(u.badges)
}

// HasBadge reports whether imageURL is already owned
func (u *User) HasBadge(imageURL string) bool {
	return slices.Contains(u.badges, imageURL)
}

// PurchaseBadge debits cost and records the badge.
// All checks run before any field changes so a rejected purchase leaves the user untouched.
func (u *User) PurchaseBadge(cost int, imageURL string) error {
	if cost <= 0 || imageURL == "" {
		return errs.ErrInvalidInput
	}
	if u.HasBadge(imageURL) {
		return ErrBadgeOwned
	}
	if u.coins < cost {
		return ErrInsufficientFunds
	}

	u.coins -= cost
	u.badges = append(u.badges, imageURL)
	return nil
}

// CreditCoins adds a positive amount to the balance
func (u *User) CreditCoins(amount int) error {
	if amount <= 0 {
		return errs.ErrInvalidInput
	}
	u.coins += amount
	return nil
}

// UpdateProfile merges the non-nil fields
func (u *User) UpdateProfile(displayName, bio, habits *string) {
	if displayName != nil {
		u.displayName = *displayName
	}
	if bio != nil {
		u.bio = *bio
	}
	if habits != nil {
		u.habits = *habits
	}
}

// SetPhoto заменяет фото профиля
func (u *User) SetPhoto(photoURL string) error {
	if strings.TrimSpace(photoURL) == "" {
		return errs.ErrInvalidInput
	}
	u.photoURL = photoURL
	return nil
}
