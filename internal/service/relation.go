package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// relation is a toggleable marker row keyed by a unique (caller, target)
// pair. Favorite, shopping cart and subscription all share this lifecycle.
type relation interface {
	exists(db *gorm.DB, callerID, targetID uuid.UUID) (bool, error)
	create(db *gorm.DB, callerID, targetID uuid.UUID) error
	remove(db *gorm.DB, callerID, targetID uuid.UUID) (int64, error)
}

type favoriteRelation struct{}

func (favoriteRelation) exists(db *gorm.DB, callerID, recipeID uuid.UUID) (bool, error) {
	return pairExists(db, &models.Favorite{}, "user_id = ? AND recipe_id = ?", callerID, recipeID)
}

func (favoriteRelation) create(db *gorm.DB, callerID, recipeID uuid.UUID) error {
	return db.Create(&models.Favorite{UserID: callerID, RecipeID: recipeID}).Error
}

func (favoriteRelation) remove(db *gorm.DB, callerID, recipeID uuid.UUID) (int64, error) {
	res := db.Where("user_id = ? AND recipe_id = ?", callerID, recipeID).Delete(&models.Favorite{})
	return res.RowsAffected, res.Error
}

type cartRelation struct{}

func (cartRelation) exists(db *gorm.DB, callerID, recipeID uuid.UUID) (bool, error) {
	return pairExists(db, &models.ShoppingCartEntry{}, "user_id = ? AND recipe_id = ?", callerID, recipeID)
}

func (cartRelation) create(db *gorm.DB, callerID, recipeID uuid.UUID) error {
	return db.Create(&models.ShoppingCartEntry{UserID: callerID, RecipeID: recipeID}).Error
}

func (cartRelation) remove(db *gorm.DB, callerID, recipeID uuid.UUID) (int64, error) {
	res := db.Where("user_id = ? AND recipe_id = ?", callerID, recipeID).Delete(&models.ShoppingCartEntry{})
	return res.RowsAffected, res.Error
}

// subscriptionRelation stores the pair as (user = target, follower = caller).
type subscriptionRelation struct{}

func (subscriptionRelation) exists(db *gorm.DB, callerID, targetID uuid.UUID) (bool, error) {
	return pairExists(db, &models.Subscription{}, "user_id = ? AND follower_id = ?", targetID, callerID)
}

func (subscriptionRelation) create(db *gorm.DB, callerID, targetID uuid.UUID) error {
	return db.Create(&models.Subscription{UserID: targetID, FollowerID: callerID}).Error
}

func (subscriptionRelation) remove(db *gorm.DB, callerID, targetID uuid.UUID) (int64, error) {
	res := db.Where("user_id = ? AND follower_id = ?", targetID, callerID).Delete(&models.Subscription{})
	return res.RowsAffected, res.Error
}

// RelationService implements the add/remove toggles shared by favorites,
// shopping cart entries and subscriptions.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// add inserts the relation row. An existing pair, or a concurrent insert
// hitting the unique constraint, is the same conflict.
func (s *RelationService) add(ctx context.Context, rel relation, callerID, targetID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	found, err := rel.exists(db, callerID, targetID)
	if err != nil {
		return err
	}
	if found {
		return ErrConflict
	}
	if err := rel.create(db, callerID, targetID); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// remove deletes the relation row. Deleting an absent relation is a client
// error, not a silent success.
func (s *RelationService) remove(ctx context.Context, rel relation, callerID, targetID uuid.UUID) error {
	rows, err := rel.remove(s.db.WithContext(ctx), callerID, targetID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

func (s *RelationService) lookupRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// AddFavorite favorites a recipe and returns it for the minimal view.
func (s *RelationService) AddFavorite(ctx context.Context, callerID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.lookupRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, favoriteRelation{}, callerID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RelationService) RemoveFavorite(ctx context.Context, callerID, recipeID uuid.UUID) error {
	if _, err := s.lookupRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.remove(ctx, favoriteRelation{}, callerID, recipeID)
}

// AddToCart puts a recipe into the caller's shopping cart.
func (s *RelationService) AddToCart(ctx context.Context, callerID, recipeID uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.lookupRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.add(ctx, cartRelation{}, callerID, recipeID); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RelationService) RemoveFromCart(ctx context.Context, callerID, recipeID uuid.UUID) error {
	if _, err := s.lookupRecipe(ctx, recipeID); err != nil {
		return err
	}
	return s.remove(ctx, cartRelation{}, callerID, recipeID)
}

// Subscribe makes the caller follow the target user. Self-subscription is a
// conflict regardless of any other state.
func (s *RelationService) Subscribe(ctx context.Context, callerID, targetID uuid.UUID) (*models.User, error) {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if callerID == targetID {
		return nil, ErrConflict
	}
	if err := s.add(ctx, subscriptionRelation{}, callerID, targetID); err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *RelationService) Unsubscribe(ctx context.Context, callerID, targetID uuid.UUID) error {
	var target models.User
	if err := s.db.WithContext(ctx).First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.remove(ctx, subscriptionRelation{}, callerID, targetID)
}
