package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/styx/internal/application/catalog"
	"github.com/lllypuk/styx/internal/domain/badge"
	"github.com/lllypuk/styx/internal/domain/category"
	"github.com/lllypuk/styx/internal/domain/errs"
)

type badgeRepo struct {
	items []badge.Badge
	err   error
}

func (r badgeRepo) List(context.Context) ([]badge.Badge, error) { return r.items, r.err }

type categoryRepo struct {
	items []category.Category
	err   error
}

func (r categoryRepo) List(context.Context) ([]category.Category, error) { return r.items, r.err }

func TestListBadges(t *testing.T) {
	ctx := context.Background()

	got, err := catalog.NewListBadgesUseCase(badgeRepo{items: []badge.Badge{{ID: "1", ImageURL: "a.png", Cost: 100}}}).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = catalog.NewListBadgesUseCase(badgeRepo{}).Execute(ctx)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = catalog.NewListBadgesUseCase(badgeRepo{err: errors.New("down")}).Execute(ctx)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestListCategories(t *testing.T) {
	ctx := context.Background()

	got, err := catalog.NewListCategoriesUseCase(categoryRepo{items: []category.Category{{ID: "1", PostType: "running"}}}).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "running", got[0].PostType)

	_, err = catalog.NewListCategoriesUseCase(categoryRepo{}).Execute(ctx)
	require.ErrorIs(t, err, catalog.ErrNoCategories)
}
