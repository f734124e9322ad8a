package types

// RecipeFields is the editable part of a recipe and the schema of the first
// wizard stage. OwnerID is accepted on the wire only so it can be refused on
// update and ignored on create.
type RecipeFields struct {
	Title        string  `json:"title" validate:"notblank,max=200"`
	Description  string  `json:"description" validate:"notblank"`
	PrepTime     int     `json:"prep_time" validate:"gt=0"`
	PrepTimeUnit string  `json:"prep_time_unit" validate:"timeunit"`
	CookTime     int     `json:"cook_time" validate:"gt=0"`
	CookTimeUnit string  `json:"cook_time_unit" validate:"timeunit"`
	SpiceLevel   int     `json:"spice_level" validate:"gte=0,lte=5"`
	CategoryID   *uint   `json:"category_id,omitempty"`
	Category     string  `json:"category,omitempty" validate:"max=100"`
	Image        *string `json:"image,omitempty" validate:"omitempty,max=255"`
	OwnerID      *uint   `json:"owner_id,omitempty"`
}

// IngredientFields is the schema of an ingredient and of the second wizard
// stage. The unit may be given by id or by label.
type IngredientFields struct {
	Name      string  `json:"name" validate:"notblank,max=100"`
	Quantity  *string `json:"quantity,omitempty" validate:"omitempty,max=50"`
	MeasureID *uint   `json:"measure_id,omitempty"`
	Measure   string  `json:"measure,omitempty" validate:"max=100"`
}

// StepFields is the schema of a step and of the third wizard stage.
type StepFields struct {
	StepNumber int    `json:"step_number" validate:"gt=0"`
	Body       string `json:"step" validate:"notblank"`
}

// NameRequest creates or renames a category.
type NameRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// MeasureRequest creates or renames a measurement unit.
type MeasureRequest struct {
	Measure string `json:"measure" validate:"notblank,max=100"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username   string  `json:"username" validate:"notblank,max=150"`
	Email      string  `json:"email" validate:"required,email,max=254"`
	Password   string  `json:"password" validate:"required,min=8"`
	ProfilePic *string `json:"profile_pic,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest changes account details; nil fields are left alone.
type UpdateAccountRequest struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,notblank,max=150"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	ProfilePic *string `json:"profile_pic,omitempty" validate:"omitempty,max=255"`
}

// ImageUploadRequest asks for a presigned upload location.
type ImageUploadRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=recipe profile"`
	Extension string `json:"extension" validate:"required,oneof=jpg jpeg png webp gif"`
}
