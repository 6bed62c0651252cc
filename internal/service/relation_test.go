package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

func seedRecipe(t *testing.T, db *gorm.DB) (*models.User, *models.Recipe) {
	author := testhelpers.CreateTestUser(t, db, "author")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, db, author, "Bread", map[uuid.UUID]int{flour.ID: 300})
	return author, recipe
}

func TestFavoriteToggle(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	_, recipe := seedRecipe(t, db)
	fan := testhelpers.CreateTestUser(t, db, "fan")

	returned, err := svc.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, returned.ID)

	// A second add is an error, not a no-op.
	_, err = svc.AddFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID), ErrConflict)

	_, err = svc.AddFavorite(ctx, fan.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShoppingCartToggle(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	_, recipe := seedRecipe(t, db)
	shopper := testhelpers.CreateTestUser(t, db, "shopper")

	returned, err := svc.AddToCart(ctx, shopper.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, returned.ID)

	_, err = svc.AddToCart(ctx, shopper.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.RemoveFromCart(ctx, shopper.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveFromCart(ctx, shopper.ID, recipe.ID), ErrConflict)

	_, err = svc.AddToCart(ctx, shopper.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubscriptionToggle(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	author := testhelpers.CreateTestUser(t, db, "author")
	follower := testhelpers.CreateTestUser(t, db, "follower")

	target, err := svc.Subscribe(ctx, follower.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, target.ID)

	_, err = svc.Subscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Subscribing to yourself is rejected before any write.
	_, err = svc.Subscribe(ctx, follower.ID, follower.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.Unsubscribe(ctx, follower.ID, author.ID))
	assert.ErrorIs(t, svc.Unsubscribe(ctx, follower.ID, author.ID), ErrConflict)

	_, err = svc.Subscribe(ctx, follower.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationsAreScopedPerUser(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := NewRelationService(db)
	ctx := context.Background()

	_, recipe := seedRecipe(t, db)
	first := testhelpers.CreateTestUser(t, db, "first")
	second := testhelpers.CreateTestUser(t, db, "second")

	_, err := svc.AddFavorite(ctx, first.ID, recipe.ID)
	require.NoError(t, err)

	// Another user's favorite is an independent row.
	_, err = svc.AddFavorite(ctx, second.ID, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFavorite(ctx, first.ID, recipe.ID))

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).
		Where("recipe_id = ?", recipe.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
