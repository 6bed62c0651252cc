package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// UserService handles user reads, avatars and subscription views.
type UserService struct {
	db     *gorm.DB
	images ImageStore
}

func NewUserService(db *gorm.DB, images ImageStore) *UserService {
	return &UserService{db: db, images: images}
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns a page of users and the total count.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("username ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Subscriptions lists the users the follower is subscribed to, paginated.
func (s *UserService) Subscriptions(ctx context.Context, followerID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.user_id = users.id").
		Where("subscriptions.follower_id = ?", followerID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := base.
		Order("users.username ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// View builds the public representation of a user relative to the caller.
func (s *UserService) View(ctx context.Context, user *models.User, callerID *uuid.UUID) (*types.UserView, error) {
	view := &types.UserView{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Avatar:    user.AvatarURL,
	}
	if callerID == nil {
		return view, nil
	}
	var err error
	view.IsSubscribed, err = pairExists(s.db.WithContext(ctx), &models.Subscription{},
		"user_id = ? AND follower_id = ?", user.ID, *callerID)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SubscriptionView builds the followed-user representation with nested recent
// recipes. recipesLimit <= 0 means no cap.
func (s *UserService) SubscriptionView(ctx context.Context, user *models.User, callerID *uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	userView, err := s.View(ctx, user, callerID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", user.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", user.ID).
		Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	view := &types.SubscriptionView{
		UserView:     *userView,
		Recipes:      make([]types.RecipeSummary, 0, len(recipes)),
		RecipesCount: count,
	}
	for i := range recipes {
		view.Recipes = append(view.Recipes, Summary(&recipes[i]))
	}
	return view, nil
}

// SetAvatar stores the submitted data-URI image and saves its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, dataURI string) (string, error) {
	url, err := s.images.StoreDataURI(ctx, dataURI, "avatars")
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url).Error; err != nil {
		return "", err
	}
	return url, nil
}

// RemoveAvatar clears the user's avatar reference.
func (s *UserService) RemoveAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == "" {
		return ErrConflict
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", "").Error
}
