package handlers

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
)

// BoardSessions is the part of app.Sessions the handlers use.
type BoardSessions interface {
	Open(ctx context.Context) (*app.Board, error)
	Get(id string) (*app.Board, error)
	Close(id string) error
}

// editedQuiz applies a submitted form onto the board's copy of the quiz so
// fields the form does not carry are sent back unchanged.
func editedQuiz(board *app.Board, id string, req *dto.QuizRequest) domain.Quiz {
	edit := req.ToQuiz(id)

	if current, ok := board.Quiz(id); ok {
		return current.Merge(edit)
	}

	return edit
}

// tagBoard scopes the request logger to board so handler, board and request
// logs share its board_id.
func tagBoard(c *gin.Context, board *app.Board, fallback *slog.Logger) {
	ctx := c.Request.Context()
	ctx = logging.WithContext(ctx, logging.FromContextOr(ctx, fallback))
	c.Request = c.Request.WithContext(logging.WithBoardID(ctx, board.ID()))
}
