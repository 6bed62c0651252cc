package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// RecipeService handles recipe reads and the transactional write path.
type RecipeService struct {
	db        *gorm.DB
	images    ImageStore
	validator *Validator
}

func NewRecipeService(db *gorm.DB, images ImageStore, validator *Validator) *RecipeService {
	return &RecipeService{
		db:        db,
		images:    images,
		validator: validator,
	}
}

// CreateRecipe validates the submission, resolves the referenced ingredients
// and writes the recipe row plus its join rows in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	if err := s.validator.ValidateIngredientList(req.Ingredients); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCookingTime(req.CookingTime); err != nil {
		return nil, err
	}
	for _, item := range req.Ingredients {
		if err := s.validator.ValidateAmount(item.Amount); err != nil {
			return nil, err
		}
	}

	// Referential lookup happens before any insert.
	if err := s.resolveIngredients(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.images.StoreDataURI(ctx, req.Image, "recipes")
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		ImageURL:    imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return tx.Create(joinRows(recipe.ID, req.Ingredients)).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe updates scalar fields and, when an ingredient list was
// supplied, replaces the full join-row set. The delete+insert runs in one
// transaction so readers never observe a recipe without ingredients.
func (s *RecipeService) UpdateRecipe(ctx context.Context, callerID, recipeID uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != callerID {
		return nil, ErrForbidden
	}

	if req.Ingredients != nil {
		if err := s.validator.ValidateIngredientList(*req.Ingredients); err != nil {
			return nil, err
		}
		for _, item := range *req.Ingredients {
			if err := s.validator.ValidateAmount(item.Amount); err != nil {
				return nil, err
			}
		}
		if err := s.resolveIngredients(ctx, *req.Ingredients); err != nil {
			return nil, err
		}
	}
	if req.CookingTime != nil {
		if err := s.validator.ValidateCookingTime(*req.CookingTime); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	if req.Image != nil {
		imageURL, err := s.images.StoreDataURI(ctx, *req.Image, "recipes")
		if err != nil {
			return nil, err
		}
		updates["image_url"] = imageURL
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
				return err
			}
			return tx.Create(joinRows(recipeID, *req.Ingredients)).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipeID)
}

// DeleteRecipe removes a recipe with its join rows, favorites and cart
// entries. Author-only.
func (s *RecipeService) DeleteRecipe(ctx context.Context, callerID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != callerID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// GetRecipe retrieves a recipe with its author and ingredient rows.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipesOptions narrows and pages the recipe listing. The flag filters
// only apply when the caller is authenticated.
type ListRecipesOptions struct {
	AuthorID         *uuid.UUID
	FavoritedBy      *uuid.UUID
	InShoppingCartOf *uuid.UUID
	Page             int
	Limit            int
}

// ListRecipes returns a page of recipes, newest first, and the total count.
func (s *RecipeService) ListRecipes(ctx context.Context, opts ListRecipesOptions) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if opts.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *opts.AuthorID)
	}
	if opts.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *opts.FavoritedBy)
	}
	if opts.InShoppingCartOf != nil {
		query = query.
			Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id").
			Where("shopping_cart_entries.user_id = ?", *opts.InShoppingCartOf)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Offset((opts.Page - 1) * opts.Limit).
		Limit(opts.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// View builds the full representation of a recipe relative to the caller.
// A nil callerID means anonymous: both flags come back false.
func (s *RecipeService) View(ctx context.Context, recipe *models.Recipe, callerID *uuid.UUID) (*types.RecipeView, error) {
	view := &types.RecipeView{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		CreatedAt:   recipe.CreatedAt,
		Author: types.UserView{
			ID:        recipe.Author.ID,
			Email:     recipe.Author.Email,
			Username:  recipe.Author.Username,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
			Avatar:    recipe.Author.AvatarURL,
		},
		Ingredients: make([]types.RecipeIngredientView, 0, len(recipe.Ingredients)),
	}

	for _, row := range recipe.Ingredients {
		view.Ingredients = append(view.Ingredients, types.RecipeIngredientView{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	if callerID == nil {
		return view, nil
	}

	var err error
	if view.IsFavorited, err = pairExists(s.db.WithContext(ctx), &models.Favorite{}, "user_id = ? AND recipe_id = ?", *callerID, recipe.ID); err != nil {
		return nil, err
	}
	if view.IsInShoppingCart, err = pairExists(s.db.WithContext(ctx), &models.ShoppingCartEntry{}, "user_id = ? AND recipe_id = ?", *callerID, recipe.ID); err != nil {
		return nil, err
	}
	if view.Author.IsSubscribed, err = pairExists(s.db.WithContext(ctx), &models.Subscription{}, "user_id = ? AND follower_id = ?", recipe.AuthorID, *callerID); err != nil {
		return nil, err
	}
	return view, nil
}

// Summary builds the minimal recipe view used by the toggle endpoints.
func Summary(recipe *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}
}

func (s *RecipeService) resolveIngredients(ctx context.Context, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrNotFound
	}
	return nil
}

func joinRows(recipeID uuid.UUID, items []types.IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	return rows
}

func pairExists(db *gorm.DB, model interface{}, cond string, args ...interface{}) (bool, error) {
	var count int64
	if err := db.Model(model).Where(cond, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
