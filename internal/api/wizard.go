package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/wizard"
)

const maxStageBody = 64 << 10

type WizardHandler struct {
	workflow *wizard.Workflow
}

func NewWizardHandler(workflow *wizard.Workflow) *WizardHandler {
	return &WizardHandler{workflow: workflow}
}

func (h *WizardHandler) RegisterRoutes(router *gin.RouterGroup) {
	wz := router.Group("/wizard")
	{
		wz.POST("", h.Start)
		wz.GET("/:session", h.Get)
		wz.DELETE("/:session", h.Cancel)
		wz.POST("/:session/:stage", h.Submit)
	}
}

func (h *WizardHandler) Start(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sess, err := h.workflow.Start(c.Request.Context(), actor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess, "next_stage": sess.State.Stage()})
}

func (h *WizardHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	sess, err := h.workflow.Get(c.Request.Context(), actor, c.Param("session"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess, "next_stage": sess.State.Stage()})
}

func (h *WizardHandler) Cancel(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.workflow.Cancel(c.Request.Context(), actor, c.Param("session")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit posts one stage. A rejected stage answers 400 with the result so the
// client can show field errors; a commit answers 201.
func (h *WizardHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	stage, ok := wizard.ParseStage(c.Param("stage"))
	if !ok {
		fail(c, errors.NotFound("unknown wizard stage"))
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStageBody))
	if err != nil {
		fail(c, errors.Validation("could not read request body").WithCause(err))
		return
	}

	result, err := h.workflow.Submit(c.Request.Context(), actor, c.Param("session"), stage, body)
	if err != nil {
		if result != nil {
			c.JSON(http.StatusBadRequest, result)
			return
		}
		fail(c, err)
		return
	}

	status := http.StatusOK
	if result.Committed {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}
