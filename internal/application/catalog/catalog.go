// Package catalog serves the read-only shop and category lists.
package catalog

import (
	"context"
	"fmt"

	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
	"github.com/lllypuk/styx/internal/domain/errs"
)

var (
	// ErrNoBadges is returned when the shop is empty
	ErrNoBadges = fmt.Errorf("no badges found: %w", errs.ErrNotFound)

	// ErrNoCategories is returned when no categories are configured
	ErrNoCategories = fmt.Errorf("no categories found: %w", errs.ErrNotFound)
)

// BadgeRepository reads the badge catalog
type BadgeRepository interface {
	List(ctx context.Context) ([]badge.Badge, error)
}

// CategoryRepository reads the category catalog
type CategoryRepository interface {
	List(ctx context.Context) ([]category.Category, error)
}

// ListBadgesUseCase returns every badge in the shop
type ListBadgesUseCase struct {
	repo BadgeRepository
}

// NewListBadgesUseCase создает ListBadgesUseCase
func NewListBadgesUseCase(repo BadgeRepository) *ListBadgesUseCase {
	return &ListBadgesUseCase{repo: repo}
}

// Execute returns ErrNoBadges for an empty catalog
func (uc *ListBadgesUseCase) Execute(ctx context.Context) ([]badge.Badge, error) {
	badges, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	if len(badges) == 0 {
		return nil, ErrNoBadges
	}
	return badges, nil
}

// ListCategoriesUseCase returns every category
type ListCategoriesUseCase struct {
	repo CategoryRepository
}

// NewListCategoriesUseCase создает ListCategoriesUseCase
func NewListCategoriesUseCase(repo CategoryRepository) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{repo: repo}
}

// Execute returns ErrNoCategories for an empty catalog
func (uc *ListCategoriesUseCase) Execute(ctx context.Context) ([]category.Category, error) {
	categories, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoCategories
	}
	return categories, nil
}
