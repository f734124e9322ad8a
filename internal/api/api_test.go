package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/logger"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/router"
	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/testhelpers"
	"github.com/pageza/chefbook/backend/internal/validation"
	"github.com/pageza/chefbook/backend/internal/wizard"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func setupAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)
	log := logger.Discard()
	v := validation.New()

	auth := service.NewAuthService(db, v, log, "api-test-secret-that-is-long-enough", time.Hour)
	recipes := service.NewRecipeService(db, v, log)
	engine := router.SetupRouter(router.Dependencies{
		DB:             db,
		Log:            log,
		AllowedOrigins: []string{"http://localhost:5173"},
		Auth:           auth,
		Taxonomy:       service.NewTaxonomyService(db, v, log),
		Recipes:        recipes,
		Favorites:      service.NewFavoriteService(db, log),
		Wizard:         wizard.NewWorkflow(wizard.NewMemoryStore(64, time.Hour), recipes, recipes, log),
	})
	return &testAPI{t: t, engine: engine, db: db, auth: auth}
}

func (a *testAPI) token(user *models.User) string {
	token, err := a.auth.GenerateToken(user)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.engine.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestRegisterLoginAndAccount(t *testing.T) {
	a := setupAPI(t)

	rr := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode(t, rr)["token"])

	rr = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "alice", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "alice", "password": "password123"})
	require.Equal(t, http.StatusOK, rr.Code)
	token := decode(t, rr)["token"].(string)

	rr = a.do(http.MethodGet, "/api/v1/account", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	account := decode(t, rr)
	assert.Equal(t, "alice", account["username"])
	assert.NotContains(t, account, "password_hash")

	rr = a.do(http.MethodGet, "/api/v1/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = a.do(http.MethodDelete, "/api/v1/account", token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestWizardFlowOverHTTP(t *testing.T) {
	a := setupAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice", false)
	token := a.token(alice)

	rr := a.do(http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Breakfast"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = a.do(http.MethodPost, "/api/v1/measurements", token, map[string]any{"measure": "cup"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPost, "/api/v1/wizard", token, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sessionID := decode(t, rr)["session"].(map[string]any)["id"].(string)
	base := "/api/v1/wizard/" + sessionID

	rr = a.do(http.MethodPost, base+"/recipe", token, map[string]any{
		"title": "Pancakes", "description": "Weekend breakfast", "prep_time": 0, "prep_time_unit": "min",
		"cook_time": 15, "cook_time_unit": "min", "spice_level": 0, "category": "Breakfast",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	rejected := decode(t, rr)
	assert.Equal(t, false, rejected["accepted"])
	assert.Contains(t, rejected["errors"], "prep_time")

	rr = a.do(http.MethodPost, base+"/recipe", token, map[string]any{
		"title": "Pancakes", "description": "Weekend breakfast", "prep_time": 10, "prep_time_unit": "min",
		"cook_time": 15, "cook_time_unit": "min", "spice_level": 0, "category": "Breakfast",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "ingredients", decode(t, rr)["next_stage"])

	rr = a.do(http.MethodPost, base+"/ingredients", token, map[string]any{"name": "Flour", "quantity": "2 cups", "measure": "cup"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = a.do(http.MethodPost, base+"/steps", token, map[string]any{"step_number": 1, "step": "Mix and cook"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	result := decode(t, rr)
	assert.Equal(t, true, result["committed"])
	assert.Equal(t, "pancakes", result["recipe_slug"])
	recipeID := uint(result["recipe_id"].(float64))

	rr = a.do(http.MethodGet, fmt.Sprintf("/api/v1/recipes/%d/pancakes", recipeID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	recipe := decode(t, rr)
	assert.Equal(t, "Pancakes", recipe["title"])
	assert.Equal(t, "10 Minutes", recipe["prep_display"])
	assert.Len(t, recipe["ingredients"], 1)
	assert.Len(t, recipe["steps"], 1)

	rr = a.do(http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOtherUsersRecipesLookMissing(t *testing.T) {
	a := setupAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice", false)
	bob := testhelpers.CreateUser(t, a.db, "bob", false)
	aliceToken, bobToken := a.token(alice), a.token(bob)

	rr := a.do(http.MethodPost, "/api/v1/recipes", aliceToken, testhelpers.ValidRecipeFields("Secret Sauce"))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode(t, rr)
	path := fmt.Sprintf("/api/v1/recipes/%v/%v", created["id"], created["slug"])

	missing := a.do(http.MethodGet, "/api/v1/recipes/99999/nothing", bobToken, nil)
	for _, rr := range []*httptest.ResponseRecorder{
		a.do(http.MethodGet, path, bobToken, nil),
		a.do(http.MethodPut, path, bobToken, testhelpers.ValidRecipeFields("Mine Now")),
		a.do(http.MethodDelete, path, bobToken, nil),
	} {
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, missing.Body.String(), rr.Body.String())
	}

	rr = a.do(http.MethodGet, "/api/v1/recipes", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode(t, rr)["recipes"])

	rr = a.do(http.MethodGet, path, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFavoriteToggleOverHTTP(t *testing.T) {
	a := setupAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice", false)
	token := a.token(alice)

	rr := a.do(http.MethodPost, "/api/v1/recipes", token, testhelpers.ValidRecipeFields("Pancakes"))
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode(t, rr)["id"]

	rr = a.do(http.MethodPost, fmt.Sprintf("/api/v1/recipes/%v/favorite", id), token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, true, decode(t, rr)["added"])

	rr = a.do(http.MethodGet, "/api/v1/recipes", token, nil)
	recipes := decode(t, rr)["recipes"].([]any)
	require.Len(t, recipes, 1)
	assert.Equal(t, true, recipes[0].(map[string]any)["is_favorite"])

	rr = a.do(http.MethodGet, "/api/v1/favorites", token, nil)
	assert.Len(t, decode(t, rr)["favorites"], 1)

	rr = a.do(http.MethodPost, fmt.Sprintf("/api/v1/recipes/%v/favorite", id), token, nil)
	assert.Equal(t, false, decode(t, rr)["added"])

	rr = a.do(http.MethodPost, "/api/v1/recipes/abc/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIngredientAndStepRoutes(t *testing.T) {
	a := setupAPI(t)
	alice := testhelpers.CreateUser(t, a.db, "alice", false)
	bob := testhelpers.CreateUser(t, a.db, "bob", false)
	token := a.token(alice)

	rr := a.do(http.MethodPost, "/api/v1/recipes", token, testhelpers.ValidRecipeFields("Soup"))
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode(t, rr)
	base := fmt.Sprintf("/api/v1/recipes/%v/%v", created["id"], created["slug"])

	rr = a.do(http.MethodPost, base+"/ingredients", token, map[string]any{"name": "Water", "quantity": "1 l"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	ingredientID := decode(t, rr)["id"]

	rr = a.do(http.MethodPost, base+"/steps", token, map[string]any{"step_number": 2, "step": "Season"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = a.do(http.MethodPost, base+"/steps", token, map[string]any{"step_number": 1, "step": "Boil"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	stepID := decode(t, rr)["id"]

	rr = a.do(http.MethodGet, base+"/steps", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	steps := decode(t, rr)["steps"].([]any)
	require.Len(t, steps, 2)
	assert.Equal(t, "Boil", steps[0].(map[string]any)["step"])

	rr = a.do(http.MethodPut, fmt.Sprintf("/api/v1/ingredients/%v", ingredientID), a.token(bob), map[string]any{"name": "Oil"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = a.do(http.MethodPut, fmt.Sprintf("/api/v1/ingredients/%v", ingredientID), token, map[string]any{"name": "Stock"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Stock", decode(t, rr)["name"])

	rr = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/steps/%v", stepID), token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = a.do(http.MethodDelete, fmt.Sprintf("/api/v1/ingredients/%v", ingredientID), token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestTaxonomyConflictsAndHealth(t *testing.T) {
	a := setupAPI(t)
	token := a.token(testhelpers.CreateUser(t, a.db, "alice", false))

	rr := a.do(http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Dinner"})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = a.do(http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Dinner"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "DUPLICATE_NAME", decode(t, rr)["code"])

	rr = a.do(http.MethodGet, "/api/v1/categories", token, nil)
	assert.Len(t, decode(t, rr)["categories"], 1)

	rr = a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])

	rr = a.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chefbook_http_requests_total")
}
