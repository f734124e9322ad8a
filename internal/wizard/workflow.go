package wizard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/metrics"
	"github.com/pageza/chefbook/backend/internal/models"
	"github.com/pageza/chefbook/backend/internal/types"
)

// Committer persists a completed wizard run as one recipe with one
// ingredient and one step, all or nothing.
type Committer interface {
	CommitDraft(ctx context.Context, actor types.Actor, recipe types.RecipeFields, ingredient types.IngredientFields, step types.StepFields) (*models.Recipe, error)
}

// Result reports the outcome of a stage submission.
type Result struct {
	Accepted   bool              `json:"accepted"`
	Errors     map[string]string `json:"errors,omitempty"`
	State      State             `json:"state"`
	NextStage  Stage             `json:"next_stage,omitempty"`
	Committed  bool              `json:"committed"`
	RecipeID   uint              `json:"recipe_id,omitempty"`
	RecipeSlug string            `json:"recipe_slug,omitempty"`
}

// Workflow drives wizard sessions through their stages.
type Workflow struct {
	store     Store
	validator StageValidator
	committer Committer
	log       *slog.Logger
	now       func() time.Time
}

func NewWorkflow(store Store, validator StageValidator, committer Committer, log *slog.Logger) *Workflow {
	return &Workflow{
		store:     store,
		validator: validator,
		committer: committer,
		log:       log.With("component", "wizard"),
		now:       time.Now,
	}
}

// Start opens a new session for the actor.
func (w *Workflow) Start(ctx context.Context, actor types.Actor) (*Session, error) {
	now := w.now()
	sess := &Session{
		ID:        uuid.NewString(),
		OwnerID:   actor.UserID,
		State:     AwaitingRecipeStage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	w.log.Debug("wizard started", "session_id", sess.ID, "user_id", actor.UserID)
	return sess, nil
}

// Get returns the actor's session. Sessions started by other users are
// reported as not found.
func (w *Workflow) Get(ctx context.Context, actor types.Actor, id string) (*Session, error) {
	sess, err := w.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != actor.UserID {
		return nil, errors.NotFound("wizard session not found")
	}
	return sess, nil
}

// Submit applies one stage of input. On a validation failure the session is
// left unchanged and both a rejected Result carrying the field errors and the
// validation error are returned. Accepting the steps stage commits the
// recipe; if the commit fails the session stays at the steps stage so the
// user can retry.
//
// The session is locked for the whole submission. A concurrent submission
// for the same session fails with a Conflict error instead of overwriting
// stage data or committing a second recipe.
func (w *Workflow) Submit(ctx context.Context, actor types.Actor, id string, stage Stage, raw []byte) (*Result, error) {
	unlock, err := w.store.Lock(ctx, id)
	if err != nil {
		if errors.Is(err, errors.ErrConflict) {
			metrics.WizardSubmissions.WithLabelValues(string(stage), "conflict").Inc()
		}
		return nil, err
	}
	defer unlock()

	sess, err := w.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next, err := Transition(ctx, w.validator, *sess, stage, raw, w.now())
	if err != nil {
		if errors.Is(err, errors.ErrValidation) {
			metrics.WizardSubmissions.WithLabelValues(string(stage), "rejected").Inc()
			return &Result{
				Accepted:  false,
				Errors:    errors.FieldErrors(err),
				State:     sess.State,
				NextStage: sess.State.Stage(),
			}, err
		}
		return nil, err
	}

	if next.State != Committed {
		if err := w.store.Save(ctx, &next); err != nil {
			return nil, err
		}
		metrics.WizardSubmissions.WithLabelValues(string(stage), "accepted").Inc()
		return &Result{Accepted: true, State: next.State, NextStage: next.State.Stage()}, nil
	}

	recipe, err := w.committer.CommitDraft(ctx, actor, *next.Recipe, *next.Ingredient, *next.Step)
	if err != nil {
		metrics.WizardSubmissions.WithLabelValues(string(stage), "commit_failed").Inc()
		return nil, err
	}
	if err := w.store.Delete(ctx, id); err != nil {
		w.log.Warn("failed to discard committed wizard session", "session_id", id, "error", err)
	}

	metrics.WizardSubmissions.WithLabelValues(string(stage), "committed").Inc()
	w.log.Info("wizard committed", "session_id", id, "recipe_id", recipe.ID)
	return &Result{
		Accepted:   true,
		State:      Committed,
		Committed:  true,
		RecipeID:   recipe.ID,
		RecipeSlug: recipe.Slug,
	}, nil
}

// Cancel discards the actor's session.
func (w *Workflow) Cancel(ctx context.Context, actor types.Actor, id string) error {
	unlock, err := w.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := w.Get(ctx, actor, id); err != nil {
		return err
	}
	return w.store.Delete(ctx, id)
}
