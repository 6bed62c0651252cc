package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that required settings are present and that the
// configured domain bounds describe non-empty ranges.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if IsProduction() && cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD is required in production")
	}

	if cfg.CookingTimeMin < 1 || cfg.CookingTimeMin > cfg.CookingTimeMax {
		errors = append(errors, fmt.Sprintf(
			"invalid cooking time bounds [%d, %d]", cfg.CookingTimeMin, cfg.CookingTimeMax))
	}
	if cfg.IngredientAmountMin < 1 || cfg.IngredientAmountMin > cfg.IngredientAmountMax {
		errors = append(errors, fmt.Sprintf(
			"invalid ingredient amount bounds [%d, %d]", cfg.IngredientAmountMin, cfg.IngredientAmountMax))
	}
	if cfg.PageSize < 1 {
		errors = append(errors, "PAGE_SIZE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}
