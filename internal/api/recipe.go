package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

type RecipeHandler struct {
	recipes       *service.RecipeService
	relations     *service.RelationService
	shoppingList  *service.ShoppingListService
	shortLinks    *service.ShortLinkService
	authService   middleware.TokenValidator
	createLimiter *middleware.RateLimiter
	pageSize      int
}

func NewRecipeHandler(
	recipes *service.RecipeService,
	relations *service.RelationService,
	shoppingList *service.ShoppingListService,
	shortLinks *service.ShortLinkService,
	authService middleware.TokenValidator,
	createLimiter *middleware.RateLimiter,
	pageSize int,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		relations:     relations,
		shoppingList:  shoppingList,
		shortLinks:    shortLinks,
		authService:   authService,
		createLimiter: createLimiter,
		pageSize:      pageSize,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	create := []gin.HandlerFunc{auth}
	if h.createLimiter != nil {
		create = append(create, h.createLimiter.Middleware())
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optional, h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingList)
		recipes.GET("/:id", optional, h.GetRecipe)
		recipes.POST("", create...)
		recipes.PATCH("/:id", auth, h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", auth, h.Favorite)
		recipes.DELETE("/:id/favorite", auth, h.Unfavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	callerID := middleware.CallerID(c)

	opts := service.ListRecipesOptions{}
	opts.Page, opts.Limit = pageParams(c, h.pageSize)

	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		opts.AuthorID = &id
	}

	// Flag filters apply only for authenticated callers.
	if callerID != nil {
		if c.Query("is_favorited") == "1" {
			opts.FavoritedBy = callerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			opts.InShoppingCartOf = callerID
		}
	}

	recipes, count, err := h.recipes.ListRecipes(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]*types.RecipeView, 0, len(recipes))
	for i := range recipes {
		view, err := h.recipes.View(c.Request.Context(), &recipes[i], callerID)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, view)
	}

	c.JSON(http.StatusOK, types.PageView{Count: count, Results: results})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.View(c.Request.Context(), recipe, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID := middleware.CallerID(c)
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), *callerID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.View(c.Request.Context(), recipe, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID := middleware.CallerID(c)
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), *callerID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.recipes.View(c.Request.Context(), recipe, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	callerID := middleware.CallerID(c)
	if err := h.recipes.DeleteRecipe(c.Request.Context(), *callerID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.addRelation(c, h.relations.AddFavorite)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFavorite)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, h.relations.AddToCart)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relations.RemoveFromCart)
}

func (h *RecipeHandler) DownloadShoppingList(c *gin.Context) {
	callerID := middleware.CallerID(c)
	text, err := h.shoppingList.Render(c.Request.Context(), *callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := h.recipes.GetRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	code, err := h.shortLinks.Ensure(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.JSON(http.StatusOK, gin.H{
		"short-link": scheme + "://" + c.Request.Host + "/s/" + code,
	})
}

// ResolveShortLink redirects a short code to the recipe resource.
func (h *RecipeHandler) ResolveShortLink(c *gin.Context) {
	id, err := h.shortLinks.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/api/v1/recipes/"+id.String())
}

type addFunc func(ctx context.Context, callerID, recipeID uuid.UUID) (*models.Recipe, error)

func (h *RecipeHandler) addRelation(c *gin.Context, add addFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	callerID := middleware.CallerID(c)
	recipe, err := add(c.Request.Context(), *callerID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.Summary(recipe))
}

type removeFunc func(ctx context.Context, callerID, recipeID uuid.UUID) error

func (h *RecipeHandler) removeRelation(c *gin.Context, remove removeFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	callerID := middleware.CallerID(c)
	if err := remove(c.Request.Context(), *callerID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, false
	}
	return id, true
}
