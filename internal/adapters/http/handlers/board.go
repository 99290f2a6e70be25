package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// BoardHandler serves the JSON view API. Every action answers with the
// board snapshot; failures use the error envelope.
type BoardHandler struct {
	sessions BoardSessions
}

// NewBoardHandler creates a board API handler.
func NewBoardHandler(sessions BoardSessions) *BoardHandler {
	return &BoardHandler{sessions: sessions}
}

// RegisterBoardRoutes registers the board API on rg under /boards.
func (h *BoardHandler) RegisterBoardRoutes(rg *gin.RouterGroup) {
	boards := rg.Group("/boards")
	boards.POST("", h.Open)

	board := boards.Group("/:sid")
	board.GET("", h.Get)
	board.DELETE("", h.Close)
	board.POST("/reload", h.Reload)
	board.PUT("/filter", h.SetFilter)
	board.PUT("/page", h.GoToPage)
	board.POST("/page/next", h.step((*app.Board).NextPage))
	board.POST("/page/prev", h.step((*app.Board).PrevPage))
	board.POST("/modal/add", h.step((*app.Board).OpenAdd))
	board.POST("/modal/edit/:id", h.OpenEdit)
	board.POST("/modal/close", h.step((*app.Board).CloseModal))
	board.POST("/quizzes", h.Create)
	board.PUT("/quizzes/:id", h.Update)
	board.DELETE("/quizzes/:id", h.Delete)
}

// Open handles POST /api/v1/boards.
func (h *BoardHandler) Open(c *gin.Context) {
	board, err := h.sessions.Open(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Location", c.FullPath()+"/"+board.ID())
	c.JSON(http.StatusCreated, dto.NewBoardResponse(board.View()))
}

// Get handles GET /api/v1/boards/:sid.
func (h *BoardHandler) Get(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(board.View()))
}

// Close handles DELETE /api/v1/boards/:sid.
func (h *BoardHandler) Close(c *gin.Context) {
	var uri dto.BoardURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	if err := h.sessions.Close(uri.SessionID); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reload handles POST /api/v1/boards/:sid/reload by fetching both lists again.
func (h *BoardHandler) Reload(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	if err := board.Mount(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(board.View()))
}

// SetFilter handles PUT /api/v1/boards/:sid/filter.
func (h *BoardHandler) SetFilter(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	var req dto.FilterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	h.respond(c, board, board.SetFilter(req.CourseID))
}

// GoToPage handles PUT /api/v1/boards/:sid/page.
func (h *BoardHandler) GoToPage(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	h.respond(c, board, board.GoToPage(req.Page))
}

// OpenEdit handles POST /api/v1/boards/:sid/modal/edit/:id.
func (h *BoardHandler) OpenEdit(c *gin.Context) {
	board, uri, ok := h.quizTarget(c)
	if !ok {
		return
	}

	h.respond(c, board, board.OpenEdit(uri.QuizID))
}

// Create handles POST /api/v1/boards/:sid/quizzes.
func (h *BoardHandler) Create(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	var req dto.QuizRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	created, err := board.Create(c.Request.Context(), req.ToQuiz(""))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.QuizResultResponse{Quiz: created, Board: dto.NewBoardResponse(board.View())})
}

// Update handles PUT /api/v1/boards/:sid/quizzes/:id.
func (h *BoardHandler) Update(c *gin.Context) {
	board, uri, ok := h.quizTarget(c)
	if !ok {
		return
	}

	var req dto.QuizRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	updated, err := board.Update(c.Request.Context(), editedQuiz(board, uri.QuizID, &req))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuizResultResponse{Quiz: updated, Board: dto.NewBoardResponse(board.View())})
}

// Delete handles DELETE /api/v1/boards/:sid/quizzes/:id?confirmed=true.
// Without confirmation nothing is deleted and deleted is false.
func (h *BoardHandler) Delete(c *gin.Context) {
	board, uri, ok := h.quizTarget(c)
	if !ok {
		return
	}

	var req dto.DeleteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.HandleValidationErrors(c, err)
		return
	}

	deleted, err := board.Delete(c.Request.Context(), uri.QuizID, ports.Confirmed(req.Confirmed))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DeleteResultResponse{Deleted: deleted, Board: dto.NewBoardResponse(board.View())})
}

// step adapts a parameterless board transition to a handler.
func (h *BoardHandler) step(fn func(*app.Board) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		board, ok := h.board(c)
		if !ok {
			return
		}

		h.respond(c, board, fn(board))
	}
}

func (h *BoardHandler) respond(c *gin.Context, board *app.Board, err error) {
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(board.View()))
}

// board resolves :sid, writing the error response when it cannot.
func (h *BoardHandler) board(c *gin.Context) (*app.Board, bool) {
	var uri dto.BoardURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		dto.HandleValidationErrors(c, err)
		return nil, false
	}

	board, err := h.sessions.Get(uri.SessionID)
	if err != nil {
		dto.HandleError(c, err)
		return nil, false
	}

	tagBoard(c, board, nil)

	return board, true
}

func (h *BoardHandler) quizTarget(c *gin.Context) (*app.Board, dto.QuizURI, bool) {
	var uri dto.QuizURI
	if err := dto.BindURIAndValidate(c, &uri); err != nil {
		dto.HandleValidationErrors(c, err)
		return nil, uri, false
	}

	board, err := h.sessions.Get(uri.SessionID)
	if err != nil {
		dto.HandleError(c, err)
		return nil, uri, false
	}

	tagBoard(c, board, nil)

	return board, uri, true
}
