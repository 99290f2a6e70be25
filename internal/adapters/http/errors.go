package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
)

func notFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound,
		dto.NewErrorResponse(dto.ErrorCodeNotFound, "no route for "+c.Request.URL.Path).
			WithTraceID(dto.GetTraceID(c)))
}

func methodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed,
		dto.NewErrorResponse(dto.ErrorCodeBadRequest, c.Request.Method+" not allowed on "+c.Request.URL.Path).
			WithTraceID(dto.GetTraceID(c)))
}
