package models

// Category groups recipes. Deleting one clears the reference on its recipes.
type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// MeasurementUnit is a unit label such as "cup" or "gram" used by ingredients.
type MeasurementUnit struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Measure string `gorm:"size:100;not null;uniqueIndex" json:"measure"`
}

func (MeasurementUnit) TableName() string {
	return "measurement_units"
}

func (m MeasurementUnit) String() string {
	return m.Measure
}
