package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/util"
	"github.com/pageza/chefbook/backend/internal/validation"
)

// TaxonomyService manages the shared vocabularies: recipe categories and
// ingredient measurement units. Names are unique within each vocabulary.
type TaxonomyService struct {
	db        *gorm.DB
	validator *validation.Validator
	log       *slog.Logger
}

func NewTaxonomyService(db *gorm.DB, v *validation.Validator, log *slog.Logger) *TaxonomyService {
	return &TaxonomyService{
		db:        db,
		validator: v,
		log:       log.With("component", "taxonomy_service"),
	}
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, req types.NameRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	category := models.Category{Name: strings.TrimSpace(req.Name)}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, duplicateOr(err, "category", category.Name)
	}
	s.log.Info("category created", "category_id", category.ID, "name", category.Name)
	return &category, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, notFoundOr(err, "category")
	}
	return &category, nil
}

func (s *TaxonomyService) RenameCategory(ctx context.Context, id uint, req types.NameRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.db.WithContext(ctx).Model(category).Update("name", name).Error; err != nil {
		return nil, duplicateOr(err, "category", name)
	}
	category.Name = name
	return category, nil
}

// DeleteCategory removes a category; its recipes keep existing without one.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			return notFoundOr(err, "category")
		}
		if err := tx.Table("recipes").Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("clear recipe categories: %w", err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		s.log.Info("category deleted", "category_id", id)
		return nil
	})
}

func (s *TaxonomyService) CreateMeasurementUnit(ctx context.Context, req types.MeasureRequest) (*models.MeasurementUnit, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	unit := models.MeasurementUnit{Measure: strings.TrimSpace(req.Measure)}
	if err := s.db.WithContext(ctx).Create(&unit).Error; err != nil {
		return nil, duplicateOr(err, "measurement unit", unit.Measure)
	}
	s.log.Info("measurement unit created", "measure_id", unit.ID, "measure", unit.Measure)
	return &unit, nil
}

func (s *TaxonomyService) ListMeasurementUnits(ctx context.Context) ([]models.MeasurementUnit, error) {
	units := []models.MeasurementUnit{}
	if err := s.db.WithContext(ctx).Order("measure ASC").Find(&units).Error; err != nil {
		return nil, fmt.Errorf("list measurement units: %w", err)
	}
	return units, nil
}

func (s *TaxonomyService) GetMeasurementUnit(ctx context.Context, id uint) (*models.MeasurementUnit, error) {
	var unit models.MeasurementUnit
	if err := s.db.WithContext(ctx).First(&unit, id).Error; err != nil {
		return nil, notFoundOr(err, "measurement unit")
	}
	return &unit, nil
}

func (s *TaxonomyService) RenameMeasurementUnit(ctx context.Context, id uint, req types.MeasureRequest) (*models.MeasurementUnit, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	unit, err := s.GetMeasurementUnit(ctx, id)
	if err != nil {
		return nil, err
	}
	measure := strings.TrimSpace(req.Measure)
	if err := s.db.WithContext(ctx).Model(unit).Update("measure", measure).Error; err != nil {
		return nil, duplicateOr(err, "measurement unit", measure)
	}
	unit.Measure = measure
	return unit, nil
}

// DeleteMeasurementUnit removes a unit; ingredients using it keep existing
// without one.
func (s *TaxonomyService) DeleteMeasurementUnit(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit models.MeasurementUnit
		if err := tx.First(&unit, id).Error; err != nil {
			return notFoundOr(err, "measurement unit")
		}
		if err := tx.Table("ingredients").Where("measure_id = ?", id).Update("measure_id", nil).Error; err != nil {
			return fmt.Errorf("clear ingredient units: %w", err)
		}
		if err := tx.Delete(&unit).Error; err != nil {
			return fmt.Errorf("delete measurement unit: %w", err)
		}
		s.log.Info("measurement unit deleted", "measure_id", id)
		return nil
	})
}

func duplicateOr(err error, kind, name string) error {
	if util.IsDuplicateKey(err) {
		return errors.DuplicateName(fmt.Sprintf("%s %q already exists", kind, name))
	}
	return fmt.Errorf("save %s: %w", kind, err)
}

func notFoundOr(err error, kind string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(kind + " not found")
	}
	return fmt.Errorf("find %s: %w", kind, err)
}
