// Package models holds the persisted entities of the recipe domain.
package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&MeasurementUnit{},
		&Recipe{},
		&Ingredient{},
		&Step{},
		&Favorite{},
	}
}
