package database

import (
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// RunMigrations applies the schema for every model.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
}
