package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/dipwatch/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a JSON 500 response.
//
// Handlers that already wrote a response keep it; the errors are only logged
// by RequestLogger in that case.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", c.Errors.Last().Err))
}

// AbortWithError stops the handler chain and writes a standardized error body.
func AbortWithError(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(msg, err))
}
