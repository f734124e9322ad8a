package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/chefbook/backend/internal/util"
)

// TimeUnit is the unit of a prep or cook duration.
type TimeUnit string

const (
	TimeUnitMinutes TimeUnit = "min"
	TimeUnitHours   TimeUnit = "hr"
	TimeUnitDays    TimeUnit = "day"
	TimeUnitWeeks   TimeUnit = "wk"
	TimeUnitMonths  TimeUnit = "mo"
)

var timeUnitLabels = map[TimeUnit]string{
	TimeUnitMinutes: "Minute",
	TimeUnitHours:   "Hour",
	TimeUnitDays:    "Day",
	TimeUnitWeeks:   "Week",
	TimeUnitMonths:  "Month",
}

// TimeUnitCodes lists the accepted codes in display order.
func TimeUnitCodes() []string {
	return []string{"min", "hr", "day", "wk", "mo"}
}

func (u TimeUnit) Valid() bool {
	_, ok := timeUnitLabels[u]
	return ok
}

// Label returns the singular display name, e.g. "Minute".
func (u TimeUnit) Label() string {
	return timeUnitLabels[u]
}

// Display renders a duration, e.g. Display(1) = "1 Minute", Display(45) = "45 Minutes".
func (u TimeUnit) Display(count uint) string {
	label := u.Label()
	if label == "" {
		return fmt.Sprintf("%d", count)
	}
	if count == 1 {
		return fmt.Sprintf("%d %s", count, label)
	}
	return fmt.Sprintf("%d %ss", count, label)
}

// MaxSpiceLevel is the hottest spice level a recipe can declare.
const MaxSpiceLevel = 5

// Recipe is the aggregate root; it owns its ingredients and steps.
// Slug is derived from Title on every save and is only unique together with ID.
type Recipe struct {
	ID           uint         `gorm:"primarykey" json:"id"`
	Title        string       `gorm:"size:200;not null" json:"title"`
	Slug         string       `gorm:"size:250;not null;index" json:"slug"`
	Description  string       `gorm:"type:text" json:"description"`
	PrepTime     uint         `gorm:"not null" json:"prep_time"`
	PrepTimeUnit TimeUnit     `gorm:"size:5;not null;default:'min'" json:"prep_time_unit"`
	CookTime     uint         `gorm:"not null" json:"cook_time"`
	CookTimeUnit TimeUnit     `gorm:"size:5;not null;default:'min'" json:"cook_time_unit"`
	SpiceLevel   uint8        `gorm:"not null;default:0" json:"spice_level"`
	CategoryID   *uint        `gorm:"index" json:"category_id"`
	Category     *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Image        *string      `gorm:"size:255" json:"image,omitempty"`
	OwnerID      *uint        `gorm:"index" json:"owner_id"`
	Owner        *User        `gorm:"foreignKey:OwnerID" json:"-"`
	Ingredients  []Ingredient `gorm:"foreignKey:RecipeID" json:"ingredients"`
	Steps        []Step       `gorm:"foreignKey:RecipeID" json:"steps"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// IsFavorite is computed per viewer and never stored.
	IsFavorite bool `gorm:"-" json:"is_favorite"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// BeforeSave keeps the slug in step with the title.
func (r *Recipe) BeforeSave(_ *gorm.DB) error {
	r.Slug = util.Slugify(r.Title)
	return nil
}

func (r *Recipe) PrepDisplay() string {
	return r.PrepTimeUnit.Display(r.PrepTime)
}

func (r *Recipe) CookDisplay() string {
	return r.CookTimeUnit.Display(r.CookTime)
}

func (r *Recipe) String() string {
	return r.Title
}

// Ingredient belongs to exactly one recipe. Siblings are unordered.
type Ingredient struct {
	ID        uint             `gorm:"primarykey" json:"id"`
	RecipeID  uint             `gorm:"not null;index" json:"recipe_id"`
	Name      string           `gorm:"size:100;not null" json:"name"`
	Quantity  *string          `gorm:"size:50" json:"quantity,omitempty"`
	MeasureID *uint            `gorm:"index" json:"measure_id"`
	Measure   *MeasurementUnit `gorm:"foreignKey:MeasureID" json:"measure,omitempty"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}

func (i Ingredient) String() string {
	quantity := ""
	if i.Quantity != nil {
		quantity = *i.Quantity
	}
	measure := "None"
	if i.Measure != nil {
		measure = i.Measure.Measure
	}
	return fmt.Sprintf("%s - %s - %s", i.Name, quantity, measure)
}

// Step is one numbered instruction. Steps are always read in StepNumber order.
type Step struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	RecipeID   uint   `gorm:"not null;index" json:"recipe_id"`
	StepNumber uint   `gorm:"not null" json:"step_number"`
	Body       string `gorm:"column:step;type:text;not null" json:"step"`
}

func (Step) TableName() string {
	return "steps"
}

func (s Step) String() string {
	return fmt.Sprintf("%d. %s", s.StepNumber, s.Body)
}

// OrderSteps is a Preload/query scope returning steps by step number.
// Ties keep insertion order.
func OrderSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_number ASC").Order("id ASC")
}
