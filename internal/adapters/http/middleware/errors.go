package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
)

func abortWithForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponse(dto.ErrorCodeForbidden, message).WithTraceID(traceIDFrom(c)))
}
