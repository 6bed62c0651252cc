package types

import (
	"github.com/google/uuid"
)

// RegisterRequest represents the request body for user registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IngredientAmount is one (ingredient id, amount) pair in a recipe submission.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Name        string             `json:"name" binding:"required,max=256"`
	Image       string             `json:"image" binding:"required"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required"`
	Ingredients []IngredientAmount `json:"ingredients"`
}

// UpdateRecipeRequest represents the request body for updating a recipe.
// All fields are optional; an omitted ingredient list leaves the existing
// set untouched, a supplied one replaces it entirely.
type UpdateRecipeRequest struct {
	Name        *string             `json:"name" binding:"omitempty,max=256"`
	Image       *string             `json:"image"`
	Text        *string             `json:"text"`
	CookingTime *int                `json:"cooking_time"`
	Ingredients *[]IngredientAmount `json:"ingredients"`
}

// SetAvatarRequest represents the request body for the avatar endpoint
type SetAvatarRequest struct {
	Avatar string `json:"avatar" binding:"required"`
}
