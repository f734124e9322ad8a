package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefbook/backend/internal/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResponse converts any error to its JSON body and status. Errors
// that are not domain errors are reported as internal without their text.
func NewErrorResponse(err error) (int, ErrorResponse) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		resp := ErrorResponse{Error: domainErr.Message, Code: string(domainErr.Code), Details: domainErr.Details}
		if domainErr.Code == errors.CodeInternal || domainErr.Code == errors.CodeCommitFailed {
			resp.Details = nil
		}
		return domainErr.HTTPStatus(), resp
	}
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: string(errors.CodeInternal)}
}

// AbortWithError writes the error response and stops the handler chain.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, resp := NewErrorResponse(err)
	c.AbortWithStatusJSON(status, resp)
}

// ErrorHandler renders errors attached with c.Error by handlers that did not
// write a response, and logs server-side failures.
func ErrorHandler(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, resp := NewErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"request_id", c.GetString(ContextRequestID),
				"error", err,
			)
		}
		if !c.Writer.Written() {
			c.JSON(status, resp)
		}
	}
}

// Recovery turns panics into a logged 500 response.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  string(errors.CodeInternal),
		})
	})
}
