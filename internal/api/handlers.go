// Package api contains the gin handlers for the REST surface under /api/v1.
// Handlers resolve the actor, bind input and delegate to the services; all
// errors are rendered by middleware.ErrorHandler.
package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/errors"
	"github.com/pageza/chefbook/backend/internal/middleware"
	"github.com/pageza/chefbook/backend/internal/types"
)

func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

// currentActor returns the authenticated actor or aborts with 401.
func currentActor(c *gin.Context) (types.Actor, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		fail(c, errors.Unauthorized("user not authenticated"))
	}
	return actor, ok
}

// idParam parses a numeric path parameter. Anything else cannot name an
// existing row and is reported as not found.
func idParam(c *gin.Context, name, kind string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		fail(c, errors.NotFound(kind+" not found"))
		return 0, false
	}
	return uint(id), true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, errors.Validation("invalid request body").WithCause(err))
		return false
	}
	return true
}
