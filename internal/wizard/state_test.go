package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/validation"
)

// schemaOnly validates stage input without reference lookups.
type schemaOnly struct {
	v *validation.Validator
}

func (s schemaOnly) ValidateRecipeFields(_ context.Context, f types.RecipeFields) error {
	return s.v.Validate(f)
}

func (s schemaOnly) ValidateIngredientFields(_ context.Context, f types.IngredientFields) error {
	return s.v.Validate(f)
}

func (s schemaOnly) ValidateStepFields(_ context.Context, f types.StepFields) error {
	return s.v.Validate(f)
}

const (
	recipeInput     = `{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"prep_time_unit":"min","cook_time":15,"cook_time_unit":"min","spice_level":0}`
	ingredientInput = `{"name":"Flour","quantity":"2 cups","measure":"cup"}`
	stepInput       = `{"step_number":1,"step":"Mix and cook"}`
)

func TestTransitionHappyPath(t *testing.T) {
	ctx := context.Background()
	v := schemaOnly{validation.New()}
	now := time.Now()
	sess := Session{ID: "s1", OwnerID: 1, State: AwaitingRecipeStage}

	sess, err := Transition(ctx, v, sess, StageRecipe, []byte(recipeInput), now)
	require.NoError(t, err)
	assert.Equal(t, AwaitingIngredientStage, sess.State)
	assert.Equal(t, "Pancakes", sess.Recipe.Title)

	sess, err = Transition(ctx, v, sess, StageIngredients, []byte(ingredientInput), now)
	require.NoError(t, err)
	assert.Equal(t, AwaitingStepStage, sess.State)

	sess, err = Transition(ctx, v, sess, StageSteps, []byte(stepInput), now)
	require.NoError(t, err)
	assert.Equal(t, Committed, sess.State)
	require.NotNil(t, sess.Step)
	assert.Equal(t, "Mix and cook", sess.Step.Body)
}

func TestTransitionRejectsInvalidInputWithoutAdvancing(t *testing.T) {
	v := schemaOnly{validation.New()}
	sess := Session{ID: "s1", State: AwaitingRecipeStage}

	next, err := Transition(context.Background(), v, sess,
		StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":0,"cook_time":15}`), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, errors.FieldErrors(err), "prep_time")
	assert.Equal(t, AwaitingRecipeStage, next.State)
	assert.Nil(t, next.Recipe)
}

func TestTransitionRejectsMalformedInput(t *testing.T) {
	v := schemaOnly{validation.New()}
	sess := Session{ID: "s1", State: AwaitingRecipeStage}

	_, err := Transition(context.Background(), v, sess, StageRecipe, []byte(`{"prep_time":"ten"}`), time.Now())
	assert.Contains(t, errors.FieldErrors(err), "prep_time")

	_, err = Transition(context.Background(), v, sess, StageRecipe, []byte(`not json`), time.Now())
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestTransitionIgnoresOwnerInput(t *testing.T) {
	v := schemaOnly{validation.New()}
	sess := Session{ID: "s1", OwnerID: 1, State: AwaitingRecipeStage}

	input := `{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"cook_time":15,"owner_id":99}`
	next, err := Transition(context.Background(), v, sess, StageRecipe, []byte(input), time.Now())
	require.NoError(t, err)
	assert.Nil(t, next.Recipe.OwnerID)
}

func TestTransitionStageOrdering(t *testing.T) {
	ctx := context.Background()
	v := schemaOnly{validation.New()}
	now := time.Now()

	t.Run("cannot skip ahead", func(t *testing.T) {
		sess := Session{ID: "s1", State: AwaitingRecipeStage}
		_, err := Transition(ctx, v, sess, StageSteps, []byte(stepInput), now)
		assert.True(t, errors.Is(err, errors.ErrValidation))
		assert.Contains(t, errors.FieldErrors(err), "stage")
	})

	t.Run("earlier stage can be resubmitted without going back", func(t *testing.T) {
		sess := Session{ID: "s1", State: AwaitingRecipeStage}
		sess, err := Transition(ctx, v, sess, StageRecipe, []byte(recipeInput), now)
		require.NoError(t, err)
		sess, err = Transition(ctx, v, sess, StageIngredients, []byte(ingredientInput), now)
		require.NoError(t, err)

		edited := `{"description":"Weekend breakfast","title":"Crepes","prep_time":5,"cook_time":5}`
		sess, err = Transition(ctx, v, sess, StageRecipe, []byte(edited), now)
		require.NoError(t, err)
		assert.Equal(t, AwaitingStepStage, sess.State)
		assert.Equal(t, "Crepes", sess.Recipe.Title)
		assert.Equal(t, "Flour", sess.Ingredient.Name)
	})

	t.Run("unknown stage", func(t *testing.T) {
		sess := Session{ID: "s1", State: AwaitingRecipeStage}
		_, err := Transition(ctx, v, sess, Stage("dessert"), nil, now)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("committed sessions are closed", func(t *testing.T) {
		sess := Session{ID: "s1", State: Committed}
		_, err := Transition(ctx, v, sess, StageRecipe, []byte(recipeInput), now)
		assert.True(t, errors.Is(err, errors.ErrConflict))
	})
}

func TestParseStage(t *testing.T) {
	stage, ok := ParseStage("ingredients")
	assert.True(t, ok)
	assert.Equal(t, StageIngredients, stage)

	_, ok = ParseStage("garnish")
	assert.False(t, ok)

	assert.Equal(t, StageSteps, AwaitingStepStage.Stage())
	assert.Equal(t, Stage(""), Committed.Stage())
}
