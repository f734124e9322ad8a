package service

import (
	"context"

	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
)

// IAuthService defines the interface for authentication and account operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req types.LoginRequest) (*models.User, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GetUser(ctx context.Context, id uint) (*models.User, error)
	UpdateAccount(ctx context.Context, actor types.Actor, req types.UpdateAccountRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, actor types.Actor, userID uint) error
}

// ITaxonomyService defines the interface for category and measurement unit operations
type ITaxonomyService interface {
	CreateCategory(ctx context.Context, req types.NameRequest) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	RenameCategory(ctx context.Context, id uint, req types.NameRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	CreateMeasurementUnit(ctx context.Context, req types.MeasureRequest) (*models.MeasurementUnit, error)
	ListMeasurementUnits(ctx context.Context) ([]models.MeasurementUnit, error)
	GetMeasurementUnit(ctx context.Context, id uint) (*models.MeasurementUnit, error)
	RenameMeasurementUnit(ctx context.Context, id uint, req types.MeasureRequest) (*models.MeasurementUnit, error)
	DeleteMeasurementUnit(ctx context.Context, id uint) error
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, actor types.Actor, fields types.RecipeFields) (*models.Recipe, error)
	ListRecipes(ctx context.Context, actor types.Actor) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, actor types.Actor, id uint, slug string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actor types.Actor, id uint, slug string, fields types.RecipeFields) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actor types.Actor, id uint, slug string) error
	ListSteps(ctx context.Context, actor types.Actor, recipeID uint, slug string) ([]models.Step, error)
	AddIngredient(ctx context.Context, actor types.Actor, recipeID uint, slug string, fields types.IngredientFields) (*models.Ingredient, error)
	UpdateIngredient(ctx context.Context, actor types.Actor, id uint, fields types.IngredientFields) (*models.Ingredient, error)
	RemoveIngredient(ctx context.Context, actor types.Actor, id uint) error
	AddStep(ctx context.Context, actor types.Actor, recipeID uint, slug string, fields types.StepFields) (*models.Step, error)
	UpdateStep(ctx context.Context, actor types.Actor, id uint, fields types.StepFields) (*models.Step, error)
	RemoveStep(ctx context.Context, actor types.Actor, id uint) error
}

// IFavoriteService defines the interface for favorite operations
type IFavoriteService interface {
	ToggleFavorite(ctx context.Context, actor types.Actor, recipeID uint) (bool, error)
	ListFavorites(ctx context.Context, actor types.Actor) ([]models.Favorite, error)
}

// IImageService defines the interface for image upload operations
type IImageService interface {
	CreateUpload(ctx context.Context, actor types.Actor, req types.ImageUploadRequest) (*types.ImageUploadResponse, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ ITaxonomyService = (*TaxonomyService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ IImageService    = (*ImageService)(nil)
)
