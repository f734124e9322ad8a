package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/metrics"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/util"
	"github.com/pageza/chefbook/backend/internal/validation"
)

// RecipeService manages recipes and the ingredients and steps they own.
// Every lookup is scoped to the actor; a recipe the actor cannot see is
// reported as not found.
type RecipeService struct {
	db        *gorm.DB
	validator *validation.Validator
	log       *slog.Logger
}

func NewRecipeService(db *gorm.DB, v *validation.Validator, log *slog.Logger) *RecipeService {
	return &RecipeService{
		db:        db,
		validator: v,
		log:       log.With("component", "recipe_service"),
	}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actor types.Actor, fields types.RecipeFields) (*models.Recipe, error) {
	if err := s.ValidateRecipeFields(ctx, fields); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{OwnerID: &actor.UserID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := resolveCategory(tx, fields, true)
		if err != nil {
			return err
		}
		applyRecipeFields(recipe, fields, categoryID)
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return categoryWriteError(err, fields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recipe.Ingredients = []models.Ingredient{}
	recipe.Steps = []models.Step{}
	metrics.RecipesCreated.Inc()
	s.log.Info("recipe created", "recipe_id", recipe.ID, "owner_id", actor.UserID)
	return recipe, nil
}

// ListRecipes returns the recipes visible to the actor ordered by title,
// each annotated with whether the actor has favorited it.
func (s *RecipeService) ListRecipes(ctx context.Context, actor types.Actor) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipes []models.Recipe
	if err := db.Scopes(visibleTo(actor)).
		Preload("Category").
		Order("title ASC").Order("id ASC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if len(recipes) == 0 {
		return recipes, nil
	}

	ids := make([]uint, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
	}
	favs, err := favoriteSet(db, actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	for i := range recipes {
		recipes[i].IsFavorite = favs[recipes[i].ID]
	}
	return recipes, nil
}

// GetRecipe loads a recipe with its category, ingredients (with units) and
// steps in step-number order.
func (s *RecipeService) GetRecipe(ctx context.Context, actor types.Actor, id uint, slug string) (*models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	err := db.Scopes(visibleTo(actor)).
		Preload("Category").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Preload("Ingredients.Measure").
		Preload("Steps", models.OrderSteps).
		Where("id = ? AND slug = ?", id, slug).
		First(&recipe).Error
	if err != nil {
		return nil, recipeLookupError(err)
	}

	favs, err := favoriteSet(db, actor.UserID, []uint{recipe.ID})
	if err != nil {
		return nil, err
	}
	recipe.IsFavorite = favs[recipe.ID]
	return &recipe, nil
}

// UpdateRecipe replaces the editable fields. The owner cannot be changed and
// the slug follows the new title.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor types.Actor, id uint, slug string, fields types.RecipeFields) (*models.Recipe, error) {
	if fields.OwnerID != nil {
		return nil, errors.ValidationWithDetails("validation failed", map[string]string{
			"owner_id": "cannot be changed",
		})
	}
	if err := s.ValidateRecipeFields(ctx, fields); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findRecipe(tx, actor, id, slug, &recipe); err != nil {
			return err
		}
		categoryID, err := resolveCategory(tx, fields, true)
		if err != nil {
			return err
		}
		applyRecipeFields(&recipe, fields, categoryID)
		if err := tx.Omit(clause.Associations).Save(&recipe).Error; err != nil {
			return categoryWriteError(err, fields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("recipe updated", "recipe_id", recipe.ID, "slug", recipe.Slug)
	return s.GetRecipe(ctx, actor, recipe.ID, recipe.Slug)
}

// DeleteRecipe removes a recipe together with its favorites, ingredients and
// steps.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor types.Actor, id uint, slug string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := findRecipe(tx, actor, id, slug, &recipe); err != nil {
			return err
		}
		return deleteRecipeTree(tx, recipe.ID)
	})
	if err != nil {
		return err
	}

	metrics.RecipesDeleted.Inc()
	s.log.Info("recipe deleted", "recipe_id", id)
	return nil
}

// ListSteps returns a recipe's steps in step-number order.
func (s *RecipeService) ListSteps(ctx context.Context, actor types.Actor, recipeID uint, slug string) ([]models.Step, error) {
	db := s.db.WithContext(ctx)

	var recipe models.Recipe
	if err := findRecipe(db, actor, recipeID, slug, &recipe); err != nil {
		return nil, err
	}

	steps := []models.Step{}
	if err := db.Scopes(models.OrderSteps).Where("recipe_id = ?", recipe.ID).Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	return steps, nil
}

func (s *RecipeService) AddIngredient(ctx context.Context, actor types.Actor, recipeID uint, slug string, fields types.IngredientFields) (*models.Ingredient, error) {
	if err := s.ValidateIngredientFields(ctx, fields); err != nil {
		return nil, err
	}

	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := findRecipe(tx, actor, recipeID, slug, &recipe); err != nil {
			return err
		}
		measureID, err := resolveMeasure(tx, fields, true)
		if err != nil {
			return err
		}
		ingredient = models.Ingredient{RecipeID: recipe.ID}
		applyIngredientFields(&ingredient, fields, measureID)
		if err := tx.Omit(clause.Associations).Create(&ingredient).Error; err != nil {
			return measureWriteError(err, fields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadIngredient(ctx, ingredient.ID)
}

// UpdateIngredient edits an ingredient. The parent recipe's visibility is
// checked on every call.
func (s *RecipeService) UpdateIngredient(ctx context.Context, actor types.Actor, id uint, fields types.IngredientFields) (*models.Ingredient, error) {
	if err := s.ValidateIngredientFields(ctx, fields); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := findChild(tx, "ingredients", actor, id, &ingredient); err != nil {
			return err
		}
		measureID, err := resolveMeasure(tx, fields, true)
		if err != nil {
			return err
		}
		applyIngredientFields(&ingredient, fields, measureID)
		if err := tx.Omit(clause.Associations).Save(&ingredient).Error; err != nil {
			return measureWriteError(err, fields)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadIngredient(ctx, id)
}

func (s *RecipeService) RemoveIngredient(ctx context.Context, actor types.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ingredient models.Ingredient
		if err := findChild(tx, "ingredients", actor, id, &ingredient); err != nil {
			return err
		}
		return tx.Delete(&models.Ingredient{}, ingredient.ID).Error
	})
}

func (s *RecipeService) AddStep(ctx context.Context, actor types.Actor, recipeID uint, slug string, fields types.StepFields) (*models.Step, error) {
	if err := s.ValidateStepFields(ctx, fields); err != nil {
		return nil, err
	}

	var step models.Step
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := findRecipe(tx, actor, recipeID, slug, &recipe); err != nil {
			return err
		}
		step = models.Step{RecipeID: recipe.ID}
		applyStepFields(&step, fields)
		return tx.Create(&step).Error
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (s *RecipeService) UpdateStep(ctx context.Context, actor types.Actor, id uint, fields types.StepFields) (*models.Step, error) {
	if err := s.ValidateStepFields(ctx, fields); err != nil {
		return nil, err
	}

	var step models.Step
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findChild(tx, "steps", actor, id, &step); err != nil {
			return err
		}
		applyStepFields(&step, fields)
		return tx.Save(&step).Error
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

func (s *RecipeService) RemoveStep(ctx context.Context, actor types.Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var step models.Step
		if err := findChild(tx, "steps", actor, id, &step); err != nil {
			return err
		}
		return tx.Delete(&models.Step{}, step.ID).Error
	})
}

// CommitDraft persists a recipe with one ingredient and one step in a single
// transaction, owned by the actor. References that disappeared since the
// fields were validated are stored as null. Any persistence failure leaves
// nothing behind and is reported as a commit failure.
func (s *RecipeService) CommitDraft(ctx context.Context, actor types.Actor, recipeFields types.RecipeFields, ingredientFields types.IngredientFields, stepFields types.StepFields) (*models.Recipe, error) {
	if err := s.validator.Validate(recipeFields); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(ingredientFields); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(stepFields); err != nil {
		return nil, err
	}

	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categoryID, err := resolveCategory(tx, recipeFields, false)
		if err != nil {
			return err
		}
		recipe = models.Recipe{OwnerID: &actor.UserID}
		applyRecipeFields(&recipe, recipeFields, categoryID)
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}

		measureID, err := resolveMeasure(tx, ingredientFields, false)
		if err != nil {
			return err
		}
		ingredient := models.Ingredient{RecipeID: recipe.ID}
		applyIngredientFields(&ingredient, ingredientFields, measureID)
		if err := tx.Omit(clause.Associations).Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient: %w", err)
		}

		step := models.Step{RecipeID: recipe.ID}
		applyStepFields(&step, stepFields)
		if err := tx.Create(&step).Error; err != nil {
			return fmt.Errorf("create step: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("draft commit failed", "owner_id", actor.UserID, "error", err)
		return nil, errors.CommitFailed(err)
	}

	metrics.RecipesCreated.Inc()
	s.log.Info("draft committed", "recipe_id", recipe.ID, "owner_id", actor.UserID)
	return &recipe, nil
}

// ValidateRecipeFields checks the recipe schema, that the title yields a
// non-empty slug and that a referenced category exists.
func (s *RecipeService) ValidateRecipeFields(ctx context.Context, fields types.RecipeFields) error {
	if err := s.validator.Validate(fields); err != nil {
		return err
	}
	if util.Slugify(fields.Title) == "" {
		return errors.ValidationWithDetails("validation failed", map[string]string{
			"title": "must contain at least one letter or digit",
		})
	}
	_, err := resolveCategory(s.db.WithContext(ctx), fields, true)
	return err
}

// ValidateIngredientFields checks the ingredient schema and that a unit given
// by id exists. A unit given by label is looked up leniently at save time.
func (s *RecipeService) ValidateIngredientFields(ctx context.Context, fields types.IngredientFields) error {
	if err := s.validator.Validate(fields); err != nil {
		return err
	}
	if fields.MeasureID == nil {
		return nil
	}
	_, err := resolveMeasure(s.db.WithContext(ctx), fields, true)
	return err
}

func (s *RecipeService) ValidateStepFields(_ context.Context, fields types.StepFields) error {
	return s.validator.Validate(fields)
}

func (s *RecipeService) loadIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).Preload("Measure").First(&ingredient, id).Error; err != nil {
		return nil, fmt.Errorf("load ingredient: %w", err)
	}
	return &ingredient, nil
}

func findRecipe(tx *gorm.DB, actor types.Actor, id uint, slug string, dest *models.Recipe) error {
	err := tx.Scopes(visibleTo(actor)).Where("id = ? AND slug = ?", id, slug).First(dest).Error
	if err != nil {
		return recipeLookupError(err)
	}
	return nil
}

func findChild(tx *gorm.DB, table string, actor types.Actor, id uint, dest any) error {
	err := tx.Scopes(childOf(table, actor)).
		Select(table+".*").
		Where(table+".id = ?", id).
		Take(dest).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(strings.TrimSuffix(table, "s") + " not found")
	}
	return fmt.Errorf("find %s: %w", table, err)
}

func recipeLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound("recipe not found")
	}
	return fmt.Errorf("find recipe: %w", err)
}

// deleteRecipeTree removes a recipe and everything that references it.
func deleteRecipeTree(tx *gorm.DB, recipeID uint) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Ingredient{}).Error; err != nil {
		return fmt.Errorf("delete ingredients: %w", err)
	}
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.Step{}).Error; err != nil {
		return fmt.Errorf("delete steps: %w", err)
	}
	if err := tx.Delete(&models.Recipe{}, recipeID).Error; err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// resolveCategory maps a category reference to an id. In strict mode an
// unknown reference is a validation error; otherwise it resolves to nil.
func resolveCategory(tx *gorm.DB, fields types.RecipeFields, strict bool) (*uint, error) {
	var category models.Category
	var field string

	switch {
	case fields.CategoryID != nil:
		field = "category_id"
		tx = tx.Where("id = ?", *fields.CategoryID)
	case strings.TrimSpace(fields.Category) != "":
		field = "category"
		tx = tx.Where("name = ?", strings.TrimSpace(fields.Category))
	default:
		return nil, nil
	}

	res := tx.Limit(1).Find(&category)
	if res.Error != nil {
		return nil, fmt.Errorf("find category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if strict {
			return nil, errors.ValidationWithDetails("validation failed", map[string]string{field: "unknown category"})
		}
		return nil, nil
	}
	return &category.ID, nil
}

// categoryWriteError reports a category removed between lookup and write the
// same way as an unknown category.
func categoryWriteError(err error, fields types.RecipeFields) error {
	if !util.IsForeignKeyViolation(err) {
		return fmt.Errorf("save recipe: %w", err)
	}
	field := "category"
	if fields.CategoryID != nil {
		field = "category_id"
	}
	return errors.ValidationWithDetails("validation failed", map[string]string{field: "unknown category"})
}

func measureWriteError(err error, fields types.IngredientFields) error {
	if !util.IsForeignKeyViolation(err) {
		return fmt.Errorf("save ingredient: %w", err)
	}
	field := "measure"
	if fields.MeasureID != nil {
		field = "measure_id"
	}
	return errors.ValidationWithDetails("validation failed", map[string]string{field: "unknown measurement unit"})
}

// resolveMeasure maps a unit reference to an id. A label that matches no
// unit always resolves to nil; an unknown id is an error in strict mode.
func resolveMeasure(tx *gorm.DB, fields types.IngredientFields, strict bool) (*uint, error) {
	var unit models.MeasurementUnit

	switch {
	case fields.MeasureID != nil:
		tx = tx.Where("id = ?", *fields.MeasureID)
	case strings.TrimSpace(fields.Measure) != "":
		strict = false
		tx = tx.Where("measure = ?", strings.TrimSpace(fields.Measure))
	default:
		return nil, nil
	}

	res := tx.Limit(1).Find(&unit)
	if res.Error != nil {
		return nil, fmt.Errorf("find measurement unit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if strict {
			return nil, errors.ValidationWithDetails("validation failed", map[string]string{"measure_id": "unknown measurement unit"})
		}
		return nil, nil
	}
	return &unit.ID, nil
}

func favoriteSet(tx *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	var ids []uint
	err := tx.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func applyRecipeFields(r *models.Recipe, f types.RecipeFields, categoryID *uint) {
	r.Title = strings.TrimSpace(f.Title)
	r.Description = f.Description
	r.PrepTime = uint(f.PrepTime)
	r.PrepTimeUnit = timeUnitOrDefault(f.PrepTimeUnit)
	r.CookTime = uint(f.CookTime)
	r.CookTimeUnit = timeUnitOrDefault(f.CookTimeUnit)
	r.SpiceLevel = uint8(f.SpiceLevel)
	r.CategoryID = categoryID
	r.Category = nil
	r.Image = f.Image
}

func applyIngredientFields(i *models.Ingredient, f types.IngredientFields, measureID *uint) {
	i.Name = strings.TrimSpace(f.Name)
	i.Quantity = f.Quantity
	i.MeasureID = measureID
	i.Measure = nil
}

func applyStepFields(s *models.Step, f types.StepFields) {
	s.StepNumber = uint(f.StepNumber)
	s.Body = strings.TrimSpace(f.Body)
}

func timeUnitOrDefault(code string) models.TimeUnit {
	if code == "" {
		return models.TimeUnitMinutes
	}
	return models.TimeUnit(code)
}
