package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/types"
)

// Validator runs the pure domain checks before any write.
type Validator struct {
	cfg *config.Config
}

func NewValidator(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateIngredientList fails when the list is empty or references the same
// ingredient twice.
func (v *Validator) ValidateIngredientList(items []types.IngredientAmount) error {
	if len(items) == 0 {
		return NewValidationError("ingredients", "recipe must have at least one ingredient")
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		seen[item.ID] = struct{}{}
	}
	if len(seen) != len(items) {
		return NewValidationError("ingredients", "recipe must have unique ingredients")
	}
	return nil
}

// ValidateAmount checks an ingredient amount against the configured bounds.
func (v *Validator) ValidateAmount(n int) error {
	if n < v.cfg.IngredientAmountMin || n > v.cfg.IngredientAmountMax {
		return NewValidationError("amount", fmt.Sprintf(
			"amount must be between %d and %d", v.cfg.IngredientAmountMin, v.cfg.IngredientAmountMax))
	}
	return nil
}

// ValidateCookingTime checks a cooking time against the configured bounds.
func (v *Validator) ValidateCookingTime(n int) error {
	if n < v.cfg.CookingTimeMin || n > v.cfg.CookingTimeMax {
		return NewValidationError("cooking_time", fmt.Sprintf(
			"cooking time must be between %d and %d", v.cfg.CookingTimeMin, v.cfg.CookingTimeMax))
	}
	return nil
}
