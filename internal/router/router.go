package router

import (
	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	userHandler *api.UserHandler,
	recipeHandler *api.RecipeHandler,
	ingredientHandler *api.IngredientHandler,
) *gin.Engine {
	api.RegisterValidators()

	router := gin.Default()
	router.Use(middleware.CORS())

	// API v1 routes
	v1 := router.Group("/api/v1")
	userHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	ingredientHandler.RegisterRoutes(v1)

	// Short link redirects live at the root
	router.GET("/s/:code", recipeHandler.ResolveShortLink)

	return router
}
