// Package wizard implements the three-stage recipe creation workflow. Stage
// data is held in a session store until the final stage commits the recipe
// with one ingredient and one step in a single transaction.
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/types"
)

// Stage names one input form of the wizard.
type Stage string

const (
	StageRecipe      Stage = "recipe"
	StageIngredients Stage = "ingredients"
	StageSteps       Stage = "steps"
)

// State is where a session is in the workflow.
type State string

const (
	AwaitingRecipeStage     State = "awaiting_recipe"
	AwaitingIngredientStage State = "awaiting_ingredient"
	AwaitingStepStage       State = "awaiting_step"
	Committed               State = "committed"
)

var stageOrder = map[Stage]int{
	StageRecipe:      0,
	StageIngredients: 1,
	StageSteps:       2,
}

var stateOrder = map[State]int{
	AwaitingRecipeStage:     0,
	AwaitingIngredientStage: 1,
	AwaitingStepStage:       2,
	Committed:               3,
}

var stateAfter = map[Stage]State{
	StageRecipe:      AwaitingIngredientStage,
	StageIngredients: AwaitingStepStage,
	StageSteps:       Committed,
}

// ParseStage returns the stage for a name used in URLs.
func ParseStage(name string) (Stage, bool) {
	stage := Stage(name)
	_, ok := stageOrder[stage]
	return stage, ok
}

// Stage returns the stage a session in this state expects next. Committed
// sessions expect nothing.
func (s State) Stage() Stage {
	switch s {
	case AwaitingRecipeStage:
		return StageRecipe
	case AwaitingIngredientStage:
		return StageIngredients
	case AwaitingStepStage:
		return StageSteps
	default:
		return ""
	}
}

// Session is the stored state of one wizard run. It belongs to the user who
// started it and is invisible to everyone else.
type Session struct {
	ID         string                  `json:"id"`
	OwnerID    uint                    `json:"owner_id"`
	State      State                   `json:"state"`
	Recipe     *types.RecipeFields     `json:"recipe,omitempty"`
	Ingredient *types.IngredientFields `json:"ingredient,omitempty"`
	Step       *types.StepFields       `json:"step,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// StageValidator checks one stage's input, including that referenced
// categories and units exist.
type StageValidator interface {
	ValidateRecipeFields(ctx context.Context, fields types.RecipeFields) error
	ValidateIngredientFields(ctx context.Context, fields types.IngredientFields) error
	ValidateStepFields(ctx context.Context, fields types.StepFields) error
}

// Transition applies one stage submission to a session and returns the
// resulting session. The input session is not modified. A stage may be
// resubmitted to replace its data as long as it is not ahead of the current
// state; resubmitting never moves the session backwards. When the steps
// stage is accepted the returned session is in the Committed state and
// carries everything needed to persist the recipe.
func Transition(ctx context.Context, v StageValidator, sess Session, stage Stage, raw []byte, now time.Time) (Session, error) {
	if sess.State == Committed {
		return sess, errors.Conflict("wizard session already committed")
	}
	pos, ok := stageOrder[stage]
	if !ok {
		return sess, errors.ValidationWithDetails("validation failed", map[string]string{
			"stage": fmt.Sprintf("unknown stage %q", stage),
		})
	}
	if pos > stateOrder[sess.State] {
		return sess, errors.ValidationWithDetails("validation failed", map[string]string{
			"stage": fmt.Sprintf("complete the %s stage first", sess.State.Stage()),
		})
	}

	next := sess
	switch stage {
	case StageRecipe:
		var fields types.RecipeFields
		if err := decode(raw, &fields); err != nil {
			return sess, err
		}
		fields.OwnerID = nil
		if err := v.ValidateRecipeFields(ctx, fields); err != nil {
			return sess, err
		}
		next.Recipe = &fields
	case StageIngredients:
		var fields types.IngredientFields
		if err := decode(raw, &fields); err != nil {
			return sess, err
		}
		if err := v.ValidateIngredientFields(ctx, fields); err != nil {
			return sess, err
		}
		next.Ingredient = &fields
	case StageSteps:
		var fields types.StepFields
		if err := decode(raw, &fields); err != nil {
			return sess, err
		}
		if err := v.ValidateStepFields(ctx, fields); err != nil {
			return sess, err
		}
		next.Step = &fields
	}

	if after := stateAfter[stage]; stateOrder[after] > stateOrder[sess.State] {
		next.State = after
	}
	next.UpdatedAt = now
	return next, nil
}

func decode(raw []byte, dest any) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	err := json.Unmarshal(raw, dest)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errors.ValidationWithDetails("validation failed", map[string]string{
			typeErr.Field: "must be of type " + typeErr.Type.String(),
		})
	}
	return errors.Validation("request body must be a JSON object").WithCause(err)
}
