package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/testhelpers"
)

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{
		JWTSecret:           "test-secret",
		CookingTimeMin:      1,
		CookingTimeMax:      32000,
		IngredientAmountMin: 1,
		IngredientAmountMax: 32000,
		PageSize:            10,
	}

	validator := service.NewValidator(cfg)
	images := testhelpers.StubImageStore{}
	authService := service.NewAuthService(db, cfg.JWTSecret, nil)
	userService := service.NewUserService(db, images)
	recipeService := service.NewRecipeService(db, images, validator)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)

	userHandler := NewUserHandler(userService, relationService, authService, cfg.PageSize)
	recipeHandler := NewRecipeHandler(recipeService, relationService, shoppingListService,
		nil, authService, nil, cfg.PageSize)
	ingredientHandler := NewIngredientHandler(service.NewIngredientService(db))

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	userHandler.RegisterRoutes(v1)
	recipeHandler.RegisterRoutes(v1)
	ingredientHandler.RegisterRoutes(v1)

	return &testAPI{engine: engine, db: db, auth: authService}
}

func (a *testAPI) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) newUser(t *testing.T, username string) (*models.User, string) {
	user := testhelpers.CreateTestUser(t, a.db, username)
	token, err := a.auth.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func recipeBody(ingredientID string, amount int) gin.H {
	return gin.H{
		"name":         "Pancakes",
		"image":        "data:image/png;base64,aW1hZ2U=",
		"text":         "Mix and fry.",
		"cooking_time": 20,
		"ingredients":  []gin.H{{"id": ingredientID, "amount": amount}},
	}
}

func TestRegisterEndpoint(t *testing.T) {
	api := setupTestAPI(t)

	body := gin.H{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "password123",
	}

	w := api.request(t, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	assert.NotEmpty(t, out["token"])
	user := out["user"].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])

	t.Run("duplicate email", func(t *testing.T) {
		dup := gin.H{}
		for k, v := range body {
			dup[k] = v
		}
		dup["username"] = "alice2"
		w := api.request(t, http.MethodPost, "/api/v1/auth/register", dup, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("username with forbidden characters", func(t *testing.T) {
		bad := gin.H{}
		for k, v := range body {
			bad[k] = v
		}
		bad["email"] = "bob@example.com"
		bad["username"] = "bob smith"
		w := api.request(t, http.MethodPost, "/api/v1/auth/register", bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		bad := gin.H{}
		for k, v := range body {
			bad[k] = v
		}
		bad["email"] = "bob@example.com"
		bad["username"] = "bob"
		bad["password"] = "short"
		w := api.request(t, http.MethodPost, "/api/v1/auth/register", bad, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	api := setupTestAPI(t)

	register := gin.H{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "password123",
	}
	w := api.request(t, http.MethodPost, "/api/v1/auth/register", register, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.request(t, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "alice@example.com", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])

	w = api.request(t, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "alice@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecipeEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	_, token := api.newUser(t, "author")
	_, otherToken := api.newUser(t, "other")
	flour := testhelpers.CreateTestIngredient(t, api.db, "flour", "g")

	t.Run("create requires auth", func(t *testing.T) {
		w := api.request(t, http.MethodPost, "/api/v1/recipes",
			recipeBody(flour.ID.String(), 300), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w := api.request(t, http.MethodPost, "/api/v1/recipes",
		recipeBody(flour.ID.String(), 300), token)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	recipeID := created["id"].(string)
	assert.Equal(t, "Pancakes", created["name"])
	assert.Equal(t, false, created["is_favorited"])

	t.Run("anonymous read", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		out := decode(t, w)
		assert.Equal(t, "Pancakes", out["name"])
		author := out["author"].(map[string]interface{})
		assert.Equal(t, "author", author["username"])
	})

	t.Run("list", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/recipes", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		out := decode(t, w)
		assert.Equal(t, float64(1), out["count"])
	})

	t.Run("empty ingredient list rejected", func(t *testing.T) {
		body := recipeBody(flour.ID.String(), 300)
		body["ingredients"] = []gin.H{}
		w := api.request(t, http.MethodPost, "/api/v1/recipes", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update by non-author forbidden", func(t *testing.T) {
		w := api.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID,
			gin.H{"name": "Hijacked"}, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("update by author", func(t *testing.T) {
		w := api.request(t, http.MethodPatch, "/api/v1/recipes/"+recipeID,
			gin.H{"name": "Crepes"}, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Crepes", decode(t, w)["name"])
	})

	t.Run("unknown id", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/recipes/not-a-uuid", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := api.request(t, http.MethodDelete, "/api/v1/recipes/"+recipeID, nil, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = api.request(t, http.MethodDelete, "/api/v1/recipes/"+recipeID, nil, token)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.request(t, http.MethodGet, "/api/v1/recipes/"+recipeID, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFavoriteEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	author, _ := api.newUser(t, "author")
	_, fanToken := api.newUser(t, "fan")
	flour := testhelpers.CreateTestIngredient(t, api.db, "flour", "g")
	recipe := testhelpers.CreateTestRecipe(t, api.db, author, "Bread",
		map[uuid.UUID]int{flour.ID: 300})

	path := "/api/v1/recipes/" + recipe.ID.String() + "/favorite"

	w := api.request(t, http.MethodPost, path, nil, fanToken)
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Bread", out["name"])
	assert.NotContains(t, out, "text")

	w = api.request(t, http.MethodPost, path, nil, fanToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Run("flag visible to the fan", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/recipes/"+recipe.ID.String(), nil, fanToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["is_favorited"])
	})

	w = api.request(t, http.MethodDelete, path, nil, fanToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.request(t, http.MethodDelete, path, nil, fanToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShoppingCartEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	author, _ := api.newUser(t, "author")
	_, shopperToken := api.newUser(t, "shopper")
	flour := testhelpers.CreateTestIngredient(t, api.db, "flour", "g")
	egg := testhelpers.CreateTestIngredient(t, api.db, "egg", "pcs")
	recipe := testhelpers.CreateTestRecipe(t, api.db, author, "Pancakes",
		map[uuid.UUID]int{flour.ID: 500, egg.ID: 3})

	w := api.request(t, http.MethodPost,
		"/api/v1/recipes/"+recipe.ID.String()+"/shopping_cart", nil, shopperToken)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("download", func(t *testing.T) {
		w := api.request(t, http.MethodGet,
			"/api/v1/recipes/download_shopping_cart", nil, shopperToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "shopping_list.txt")
		assert.Equal(t, "egg - 3 pcs,\nflour - 500 g", w.Body.String())
	})

	t.Run("empty cart downloads empty body", func(t *testing.T) {
		_, otherToken := api.newUser(t, "empty")
		w := api.request(t, http.MethodGet,
			"/api/v1/recipes/download_shopping_cart", nil, otherToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", w.Body.String())
	})

	t.Run("download requires auth", func(t *testing.T) {
		w := api.request(t, http.MethodGet,
			"/api/v1/recipes/download_shopping_cart", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestSubscriptionEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	author, _ := api.newUser(t, "author")
	follower, followerToken := api.newUser(t, "follower")
	flour := testhelpers.CreateTestIngredient(t, api.db, "flour", "g")
	for _, name := range []string{"First", "Second", "Third"} {
		testhelpers.CreateTestRecipe(t, api.db, author, name, map[uuid.UUID]int{flour.ID: 100})
	}

	subscribePath := "/api/v1/users/" + author.ID.String() + "/subscribe"

	w := api.request(t, http.MethodPost, subscribePath+"?recipes_limit=2", nil, followerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	out := decode(t, w)
	assert.Equal(t, true, out["is_subscribed"])
	assert.Equal(t, float64(3), out["recipes_count"])
	assert.Len(t, out["recipes"], 2)

	t.Run("duplicate subscribe", func(t *testing.T) {
		w := api.request(t, http.MethodPost, subscribePath, nil, followerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("self subscribe", func(t *testing.T) {
		w := api.request(t, http.MethodPost,
			"/api/v1/users/"+follower.ID.String()+"/subscribe", nil, followerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("subscriptions listing", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/users/subscriptions", nil, followerToken)
		require.Equal(t, http.StatusOK, w.Code)
		out := decode(t, w)
		assert.Equal(t, float64(1), out["count"])
	})

	t.Run("unsubscribe", func(t *testing.T) {
		w := api.request(t, http.MethodDelete, subscribePath, nil, followerToken)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.request(t, http.MethodDelete, subscribePath, nil, followerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	user, token := api.newUser(t, "alice")
	api.newUser(t, "bob")

	t.Run("me", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/users/me", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decode(t, w)["username"])
	})

	t.Run("me requires auth", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/users/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/users/"+user.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice", decode(t, w)["username"])
	})

	t.Run("list", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/users", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decode(t, w)["count"])
	})

	t.Run("avatar lifecycle", func(t *testing.T) {
		w := api.request(t, http.MethodPut, "/api/v1/users/me/avatar",
			gin.H{"avatar": "data:image/png;base64,aW1hZ2U="}, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode(t, w)["avatar"])

		w = api.request(t, http.MethodDelete, "/api/v1/users/me/avatar", nil, token)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = api.request(t, http.MethodDelete, "/api/v1/users/me/avatar", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestIngredientEndpoints(t *testing.T) {
	api := setupTestAPI(t)

	flour := testhelpers.CreateTestIngredient(t, api.db, "flour", "g")
	testhelpers.CreateTestIngredient(t, api.db, "flaxseed", "g")
	testhelpers.CreateTestIngredient(t, api.db, "sugar", "g")

	t.Run("list all", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/ingredients", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var out []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 3)
	})

	t.Run("prefix filter", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/ingredients?name=fl", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var out []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 2)
		assert.Equal(t, "flaxseed", out[0]["name"])
		assert.Equal(t, "flour", out[1]["name"])
	})

	t.Run("get by id", func(t *testing.T) {
		w := api.request(t, http.MethodGet, "/api/v1/ingredients/"+flour.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "flour", decode(t, w)["name"])
	})
}
