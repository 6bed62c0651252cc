package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

type UserHandler struct {
	users       *service.UserService
	relations   *service.RelationService
	authService *service.AuthService
	pageSize    int
}

func NewUserHandler(users *service.UserService, relations *service.RelationService, authService *service.AuthService, pageSize int) *UserHandler {
	return &UserHandler{
		users:       users,
		relations:   relations,
		authService: authService,
		pageSize:    pageSize,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	users := router.Group("/users")
	{
		users.GET("", optional, h.ListUsers)
		users.GET("/me", auth, h.Me)
		users.PUT("/me/avatar", auth, h.SetAvatar)
		users.DELETE("/me/avatar", auth, h.RemoveAvatar)
		users.GET("/subscriptions", auth, h.Subscriptions)
		users.GET("/:id", optional, h.GetUser)
		users.POST("/:id/subscribe", auth, h.Subscribe)
		users.DELETE("/:id/subscribe", auth, h.Unsubscribe)
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.users.View(c.Request.Context(), user, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": view, "token": token})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.users.View(c.Request.Context(), user, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": view, "token": token})
}

func (h *UserHandler) Me(c *gin.Context) {
	callerID := middleware.CallerID(c)
	user, err := h.users.GetUser(c.Request.Context(), *callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.users.View(c.Request.Context(), user, callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.users.View(c.Request.Context(), user, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := pageParams(c, h.pageSize)

	users, count, err := h.users.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	callerID := middleware.CallerID(c)
	results := make([]*types.UserView, 0, len(users))
	for i := range users {
		view, err := h.users.View(c.Request.Context(), &users[i], callerID)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, view)
	}
	c.JSON(http.StatusOK, types.PageView{Count: count, Results: results})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	callerID := middleware.CallerID(c)
	target, err := h.relations.Subscribe(c.Request.Context(), *callerID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.users.SubscriptionView(c.Request.Context(), target, callerID, recipesLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	callerID := middleware.CallerID(c)
	if err := h.relations.Unsubscribe(c.Request.Context(), *callerID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	callerID := middleware.CallerID(c)
	page, limit := pageParams(c, h.pageSize)

	users, count, err := h.users.Subscriptions(c.Request.Context(), *callerID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	capPerUser := recipesLimit(c)
	results := make([]*types.SubscriptionView, 0, len(users))
	for i := range users {
		view, err := h.users.SubscriptionView(c.Request.Context(), &users[i], callerID, capPerUser)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, view)
	}
	c.JSON(http.StatusOK, types.PageView{Count: count, Results: results})
}

func (h *UserHandler) SetAvatar(c *gin.Context) {
	var req types.SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID := middleware.CallerID(c)
	url, err := h.users.SetAvatar(c.Request.Context(), *callerID, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": url})
}

func (h *UserHandler) RemoveAvatar(c *gin.Context) {
	callerID := middleware.CallerID(c)
	if err := h.users.RemoveAvatar(c.Request.Context(), *callerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads the optional cap on nested recipes in subscription
// views. Zero means uncapped.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
