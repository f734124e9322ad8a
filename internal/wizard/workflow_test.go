package wizard_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/logger"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/service"
	"github.com/pageza/chefbook/backend/internal/testhelpers"
	"github.com/pageza/chefbook/backend/internal/types"
	"github.com/pageza/chefbook/backend/internal/validation"
	"github.com/pageza/chefbook/backend/internal/wizard"
)

type failingCommitter struct{}

func (failingCommitter) CommitDraft(context.Context, types.Actor, types.RecipeFields, types.IngredientFields, types.StepFields) (*models.Recipe, error) {
	return nil, errors.CommitFailed(errors.New("connection reset"))
}

// gatedCommitter blocks inside CommitDraft until release is closed.
type gatedCommitter struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCommitter) CommitDraft(_ context.Context, _ types.Actor, recipe types.RecipeFields, _ types.IngredientFields, _ types.StepFields) (*models.Recipe, error) {
	g.calls.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return &models.Recipe{ID: 7, Title: recipe.Title, Slug: "pancakes"}, nil
}

func TestWizardPancakesEndToEnd(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	store := wizard.NewMemoryStore(16, time.Hour)
	flow := wizard.NewWorkflow(store, recipes, recipes, logger.Discard())
	ctx := context.Background()

	alice := testhelpers.CreateUser(t, db, "alice", false)
	testhelpers.CreateCategory(t, db, "Breakfast")
	cup := testhelpers.CreateMeasurementUnit(t, db, "cup")
	actor := testhelpers.ActorFor(alice)

	sess, err := flow.Start(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, wizard.AwaitingRecipeStage, sess.State)

	res, err := flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":0,"prep_time_unit":"min","cook_time":15,"cook_time_unit":"min","spice_level":0,"category":"Breakfast"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	require.NotNil(t, res)
	assert.False(t, res.Accepted)
	assert.Contains(t, res.Errors, "prep_time")
	got, err := flow.Get(ctx, actor, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.AwaitingRecipeStage, got.State)

	res, err = flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"prep_time_unit":"min","cook_time":15,"cook_time_unit":"min","spice_level":0,"category":"Breakfast"}`))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, wizard.StageIngredients, res.NextStage)

	res, err = flow.Submit(ctx, actor, sess.ID, wizard.StageIngredients, []byte(`{"name":"Flour","quantity":"2 cups","measure":"cup"}`))
	require.NoError(t, err)
	assert.Equal(t, wizard.StageSteps, res.NextStage)

	var count int64
	db.Model(&models.Recipe{}).Count(&count)
	assert.Zero(t, count, "nothing is persisted before the final stage")

	res, err = flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix and cook"}`))
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, "pancakes", res.RecipeSlug)

	recipe, err := recipes.GetRecipe(ctx, actor, res.RecipeID, res.RecipeSlug)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", recipe.Title)
	assert.Equal(t, alice.ID, *recipe.OwnerID)
	require.NotNil(t, recipe.Category)
	assert.Equal(t, "Breakfast", recipe.Category.Name)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "Flour", recipe.Ingredients[0].Name)
	assert.Equal(t, cup.ID, *recipe.Ingredients[0].MeasureID)
	require.Len(t, recipe.Steps, 1)
	assert.Equal(t, "1. Mix and cook", recipe.Steps[0].String())

	_, err = flow.Get(ctx, actor, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound), "session is discarded after commit")
}

func TestWizardSessionsAreIsolated(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	flow := wizard.NewWorkflow(wizard.NewMemoryStore(16, time.Hour), recipes, recipes, logger.Discard())
	ctx := context.Background()

	alice := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "alice", false))
	bob := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "bob", false))

	sess, err := flow.Start(ctx, alice)
	require.NoError(t, err)

	_, err = flow.Get(ctx, bob, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = flow.Submit(ctx, bob, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Stolen","prep_time":1,"cook_time":1}`))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.True(t, errors.Is(flow.Cancel(ctx, bob, sess.ID), errors.ErrNotFound))

	require.NoError(t, flow.Cancel(ctx, alice, sess.ID))
	_, err = flow.Get(ctx, alice, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestWizardCommitFailureKeepsSession(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	flow := wizard.NewWorkflow(wizard.NewMemoryStore(16, time.Hour), recipes, failingCommitter{}, logger.Discard())
	ctx := context.Background()
	actor := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "alice", false))

	sess, err := flow.Start(ctx, actor)
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"cook_time":15}`))
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageIngredients, []byte(`{"name":"Flour"}`))
	require.NoError(t, err)

	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCommitFailed))

	got, err := flow.Get(ctx, actor, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.AwaitingStepStage, got.State)
	assert.Equal(t, "Pancakes", got.Recipe.Title)
	assert.Equal(t, "Flour", got.Ingredient.Name)
}

func TestWizardRejectsUnknownCategory(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	flow := wizard.NewWorkflow(wizard.NewMemoryStore(16, time.Hour), recipes, recipes, logger.Discard())
	ctx := context.Background()
	actor := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "alice", false))

	sess, err := flow.Start(ctx, actor)
	require.NoError(t, err)

	res, err := flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"cook_time":15,"category":"Brunch"}`))
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, res.Errors, "category")
}

func TestWizardConcurrentFinalSubmissionCommitsOnce(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	committer := &gatedCommitter{entered: make(chan struct{}, 2), release: make(chan struct{})}
	flow := wizard.NewWorkflow(wizard.NewMemoryStore(16, time.Hour), recipes, committer, logger.Discard())
	ctx := context.Background()
	actor := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "alice", false))

	sess, err := flow.Start(ctx, actor)
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"cook_time":15}`))
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageIngredients, []byte(`{"name":"Flour"}`))
	require.NoError(t, err)

	type outcome struct {
		res *wizard.Result
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix"}`))
		first <- outcome{res, err}
	}()
	<-committer.entered

	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix"}`))
	assert.True(t, errors.Is(err, errors.ErrConflict), "second final submission: %v", err)

	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageIngredients, []byte(`{"name":"Sugar"}`))
	assert.True(t, errors.Is(err, errors.ErrConflict), "earlier stage during commit: %v", err)
	assert.True(t, errors.Is(flow.Cancel(ctx, actor, sess.ID), errors.ErrConflict))

	close(committer.release)
	got := <-first
	require.NoError(t, got.err)
	assert.True(t, got.res.Committed)
	assert.Equal(t, int32(1), committer.calls.Load())

	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix"}`))
	assert.True(t, errors.Is(err, errors.ErrNotFound), "session is gone after the commit")
	assert.Equal(t, int32(1), committer.calls.Load())
}

func TestWizardCommitFailureReleasesLock(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, validation.New(), logger.Discard())
	store := wizard.NewMemoryStore(16, time.Hour)
	flow := wizard.NewWorkflow(store, recipes, failingCommitter{}, logger.Discard())
	ctx := context.Background()
	actor := testhelpers.ActorFor(testhelpers.CreateUser(t, db, "alice", false))

	sess, err := flow.Start(ctx, actor)
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageRecipe, []byte(`{"description":"Weekend breakfast","title":"Pancakes","prep_time":10,"cook_time":15}`))
	require.NoError(t, err)
	_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageIngredients, []byte(`{"name":"Flour"}`))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = flow.Submit(ctx, actor, sess.ID, wizard.StageSteps, []byte(`{"step_number":1,"step":"Mix"}`))
		assert.True(t, errors.Is(err, errors.ErrCommitFailed), "attempt %d: %v", i, err)
	}

	unlock, err := store.Lock(ctx, sess.ID)
	require.NoError(t, err)
	unlock()
}
