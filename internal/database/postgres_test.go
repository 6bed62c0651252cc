package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/testhelpers"
)

// Exercises the real schema against Postgres. Skipped without docker.
func TestPostgresSchema(t *testing.T) {
	db := testhelpers.SetupPostgres(t)

	user := testhelpers.CreateTestUser(t, db, "alice")
	flour := testhelpers.CreateTestIngredient(t, db, "flour", "g")

	t.Run("unique email enforced", func(t *testing.T) {
		dup := &models.User{
			Email:        user.Email,
			Username:     "different",
			FirstName:    "Test",
			LastName:     "User",
			PasswordHash: "x",
		}
		assert.Error(t, db.Create(dup).Error)
	})

	t.Run("unique relation pair enforced", func(t *testing.T) {
		recipe := &models.Recipe{
			AuthorID:    user.ID,
			Name:        "Bread",
			ImageURL:    "https://media.test/recipes/bread.png",
			Text:        "Bake.",
			CookingTime: 60,
		}
		require.NoError(t, db.Create(recipe).Error)

		row := &models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: flour.ID, Amount: 300}
		require.NoError(t, db.Create(row).Error)

		fav := &models.Favorite{UserID: user.ID, RecipeID: recipe.ID}
		require.NoError(t, db.Create(fav).Error)
		assert.Error(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	})
}
