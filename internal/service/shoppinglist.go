package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListService renders the aggregated ingredient list for every
// recipe in a user's cart.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// CartIngredient is one (name, unit, amount) row pulled from the cart join.
type CartIngredient struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// CartIngredients fetches every ingredient row of every recipe currently in
// the user's shopping cart.
func (s *ShoppingListService) CartIngredients(ctx context.Context, userID uuid.UUID) ([]CartIngredient, error) {
	var rows []CartIngredient
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BuildShoppingList groups rows by (name, unit), sums amounts and renders
// one line per group, sorted by name. An empty input yields an empty string.
func BuildShoppingList(rows []CartIngredient) string {
	type group struct {
		name  string
		unit  string
		total int
	}

	totals := make(map[[2]string]*group, len(rows))
	order := make([]*group, 0, len(rows))
	for _, row := range rows {
		key := [2]string{row.Name, row.MeasurementUnit}
		g, ok := totals[key]
		if !ok {
			g = &group{name: row.Name, unit: row.MeasurementUnit}
			totals[key] = g
			order = append(order, g)
		}
		g.total += row.Amount
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].name < order[j].name
	})

	lines := make([]string, 0, len(order))
	for _, g := range order {
		lines = append(lines, fmt.Sprintf("%s - %d %s", g.name, g.total, g.unit))
	}
	return strings.Join(lines, ",\n")
}

// Render produces the downloadable shopping list text for the user.
func (s *ShoppingListService) Render(ctx context.Context, userID uuid.UUID) (string, error) {
	rows, err := s.CartIngredients(ctx, userID)
	if err != nil {
		return "", err
	}
	return BuildShoppingList(rows), nil
}
