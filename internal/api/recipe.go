package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/types"
)

type RecipeHandler struct {
	recipeService   service.IRecipeService
	favoriteService service.IFavoriteService
}

func NewRecipeHandler(recipeService service.IRecipeService, favoriteService service.IFavoriteService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		favoriteService: favoriteService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id/:slug", h.GetRecipe)
		recipes.PUT("/:id/:slug", h.UpdateRecipe)
		recipes.DELETE("/:id/:slug", h.DeleteRecipe)
		recipes.GET("/:id/:slug/steps", h.ListSteps)
		recipes.POST("/:id/:slug/steps", h.AddStep)
		recipes.POST("/:id/:slug/ingredients", h.AddIngredient)
		recipes.POST("/:id/favorite", h.ToggleFavorite)
	}

	ingredients := router.Group("/ingredients")
	{
		ingredients.PUT("/:id", h.UpdateIngredient)
		ingredients.DELETE("/:id", h.RemoveIngredient)
	}

	steps := router.Group("/steps")
	{
		steps.PUT("/:id", h.UpdateStep)
		steps.DELETE("/:id", h.RemoveStep)
	}

	router.GET("/favorites", h.ListFavorites)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}

	resp := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		resp[i] = types.NewRecipeResponse(&recipes[i])
	}
	c.JSON(http.StatusOK, gin.H{"recipes": resp})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var fields types.RecipeFields
	if !bindJSON(c, &fields) {
		return
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), actor, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeResponse(recipe))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), actor, id, slug)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	var fields types.RecipeFields
	if !bindJSON(c, &fields) {
		return
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), actor, id, slug, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), actor, id, slug); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ListSteps(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	steps, err := h.recipeService.ListSteps(c.Request.Context(), actor, id, slug)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"steps": steps})
}

func (h *RecipeHandler) AddStep(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	var fields types.StepFields
	if !bindJSON(c, &fields) {
		return
	}
	step, err := h.recipeService.AddStep(c.Request.Context(), actor, id, slug, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, step)
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	actor, id, slug, ok := h.recipeRef(c)
	if !ok {
		return
	}
	var fields types.IngredientFields
	if !bindJSON(c, &fields) {
		return
	}
	ingredient, err := h.recipeService.AddIngredient(c.Request.Context(), actor, id, slug, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ingredient)
}

func (h *RecipeHandler) UpdateIngredient(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}
	var fields types.IngredientFields
	if !bindJSON(c, &fields) {
		return
	}
	ingredient, err := h.recipeService.UpdateIngredient(c.Request.Context(), actor, id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "ingredient")
	if !ok {
		return
	}
	if err := h.recipeService.RemoveIngredient(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) UpdateStep(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "step")
	if !ok {
		return
	}
	var fields types.StepFields
	if !bindJSON(c, &fields) {
		return
	}
	step, err := h.recipeService.UpdateStep(c.Request.Context(), actor, id, fields)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, step)
}

func (h *RecipeHandler) RemoveStep(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "step")
	if !ok {
		return
	}
	if err := h.recipeService.RemoveStep(c.Request.Context(), actor, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleFavorite(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "recipe")
	if !ok {
		return
	}
	added, err := h.favoriteService.ToggleFavorite(c.Request.Context(), actor, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ToggleFavoriteResponse{RecipeID: id, Added: added})
}

func (h *RecipeHandler) ListFavorites(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	favorites, err := h.favoriteService.ListFavorites(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}

	resp := make([]types.FavoriteResponse, len(favorites))
	for i, fav := range favorites {
		resp[i] = types.FavoriteResponse{ID: fav.ID, AddedOn: fav.AddedOn, Recipe: withFavorite(fav.Recipe)}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": resp})
}

func (h *RecipeHandler) recipeRef(c *gin.Context) (types.Actor, uint, string, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return types.Actor{}, 0, "", false
	}
	id, ok := idParam(c, "id", "recipe")
	if !ok {
		return types.Actor{}, 0, "", false
	}
	return actor, id, c.Param("slug"), true
}

func withFavorite(r *models.Recipe) *models.Recipe {
	if r != nil {
		r.IsFavorite = true
	}
	return r
}
