package service

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/metrics"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/util"
)

type FavoriteService struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewFavoriteService(db *gorm.DB, log *slog.Logger) *FavoriteService {
	return &FavoriteService{
		db:  db,
		log: log.With("component", "favorite_service"),
	}
}

// ToggleFavorite flips whether the actor has favorited the recipe and
// reports the resulting state. Only recipes visible to the actor can be
// toggled.
//
// Concurrent toggles are serialized by the (user, recipe) unique index: the
// loser of an insert race removes the row the winner created, so the final
// state matches some sequential order of the calls.
func (s *FavoriteService) ToggleFavorite(ctx context.Context, actor types.Actor, recipeID uint) (bool, error) {
	db := s.db.WithContext(ctx)

	res := db.Scopes(visibleTo(actor)).Where("id = ?", recipeID).Limit(1).Find(&models.Recipe{})
	if res.Error != nil {
		return false, fmt.Errorf("find recipe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, errors.NotFound("recipe not found")
	}

	removed, err := s.remove(db, actor.UserID, recipeID)
	if err != nil {
		return false, err
	}
	if removed {
		s.record(actor.UserID, recipeID, false)
		return false, nil
	}

	fav := models.Favorite{UserID: actor.UserID, RecipeID: recipeID}
	if err := db.Omit(clause.Associations).Create(&fav).Error; err != nil {
		if !util.IsDuplicateKey(err) {
			return false, fmt.Errorf("add favorite: %w", err)
		}
		if _, err := s.remove(db, actor.UserID, recipeID); err != nil {
			return false, errors.Conflict("favorite changed concurrently").WithCause(err)
		}
		s.record(actor.UserID, recipeID, false)
		return false, nil
	}

	s.record(actor.UserID, recipeID, true)
	return true, nil
}

// ListFavorites returns the actor's favorites, newest first, with recipes.
func (s *FavoriteService) ListFavorites(ctx context.Context, actor types.Actor) ([]models.Favorite, error) {
	favs := []models.Favorite{}
	err := s.db.WithContext(ctx).
		Preload("Recipe").
		Preload("Recipe.Category").
		Where("user_id = ?", actor.UserID).
		Order("added_on DESC").Order("id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, recipeID uint) (bool, error) {
	set, err := favoriteSet(s.db.WithContext(ctx), userID, []uint{recipeID})
	if err != nil {
		return false, err
	}
	return set[recipeID], nil
}

func (s *FavoriteService) remove(db *gorm.DB, userID, recipeID uint) (bool, error) {
	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FavoriteService) record(userID, recipeID uint, added bool) {
	action := "removed"
	if added {
		action = "added"
	}
	metrics.FavoriteToggles.WithLabelValues(action).Inc()
	s.log.Debug("favorite toggled", "user_id", userID, "recipe_id", recipeID, "action", action)
}

