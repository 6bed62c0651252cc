package testhelpers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// CreateTestUser inserts a user with a deterministic email derived from
// the username.
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestIngredient inserts a catalog ingredient.
func CreateTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// CreateTestRecipe inserts a recipe with the given ingredient amounts.
func CreateTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, amounts map[uuid.UUID]int) *models.Recipe {
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		ImageURL:    "https://media.test/recipes/" + name + ".png",
		Text:        "Test recipe " + name,
		CookingTime: 30,
	}
	require.NoError(t, db.Create(recipe).Error)
	for id, amount := range amounts {
		row := &models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: id,
			Amount:       amount,
		}
		require.NoError(t, db.Create(row).Error)
	}
	return recipe
}

// StubImageStore satisfies the image store interface without touching S3.
type StubImageStore struct{}

func (StubImageStore) StoreDataURI(_ context.Context, _ string, keyPrefix string) (string, error) {
	return "https://media.test/" + keyPrefix + "/stub.png", nil
}
