package types

import (
	"time"

	"github.com/google/uuid"
)

// UserView is the public representation of a user. IsSubscribed is computed
// relative to the caller and always false for anonymous requests.
type UserView struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"`
	IsSubscribed bool      `json:"is_subscribed"`
}

// RecipeIngredientView is one ingredient line of a recipe representation.
type RecipeIngredientView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

// RecipeView is the full recipe representation. The two flags are computed
// per caller; anonymous callers always get false.
type RecipeView struct {
	ID               uuid.UUID              `json:"id"`
	Author           UserView               `json:"author"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	CreatedAt        time.Time              `json:"created_at"`
}

// RecipeSummary is the minimal recipe view returned by the toggle endpoints
// and nested under subscription views.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

// SubscriptionView is a followed user with their recent recipes.
type SubscriptionView struct {
	UserView
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int64           `json:"recipes_count"`
}

// PageView is a paginated list response.
type PageView struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}
