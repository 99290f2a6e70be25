package handlers

import (
	"bytes"
	"context"
	"crypto/subtle"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quizboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// PagePath is the entry point of the teacher quiz page.
const PagePath = "/teacher/quizzes"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// PageConfig contains the dependencies of the HTML page handler.
type PageConfig struct {
	Sessions     BoardSessions
	CookieName   string
	SecureCookie bool
	Logger       *slog.Logger
}

// PageHandler serves the server-rendered quiz page. Actions change the board
// and redirect back to it; a failed action is logged and the page shows the
// unchanged state.
type PageHandler struct {
	sessions BoardSessions
	cookie   string
	secure   bool
	logger   *slog.Logger
}

// NewPageHandler creates a page handler.
func NewPageHandler(cfg PageConfig) *PageHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cookie := cfg.CookieName
	if cookie == "" {
		cookie = config.DefaultSessionCookie
	}

	return &PageHandler{
		sessions: cfg.Sessions,
		cookie:   cookie,
		secure:   cfg.SecureCookie,
		logger:   logger.With(slog.String("component", "handlers.Page")),
	}
}

// RegisterPageRoutes registers the page under PagePath.
func (h *PageHandler) RegisterPageRoutes(r gin.IRouter) {
	page := r.Group(PagePath)
	page.GET("", h.Enter)

	board := page.Group("/:sid")
	board.GET("", h.Render)
	board.POST("/close", h.Close)
	board.POST("/filter", h.action("filter", h.setFilter))
	board.POST("/page/next", h.action("next page", func(_ *gin.Context, b *app.Board) error { return b.NextPage() }))
	board.POST("/page/prev", h.action("previous page", func(_ *gin.Context, b *app.Board) error { return b.PrevPage() }))
	board.POST("/modal/add", h.action("open add", func(_ *gin.Context, b *app.Board) error { return b.OpenAdd() }))
	board.POST("/modal/edit/:id", h.action("open edit", func(c *gin.Context, b *app.Board) error {
		return b.OpenEdit(c.Param("id"))
	}))
	board.POST("/modal/close", h.action("close modal", func(_ *gin.Context, b *app.Board) error { return b.CloseModal() }))
	board.POST("/quizzes", h.action("create quiz", h.create))
	board.POST("/quizzes/:id", h.action("update quiz", h.update))
	board.GET("/quizzes/:id/delete", h.ConfirmDelete)
	board.POST("/quizzes/:id/delete", h.action("delete quiz", h.delete))
	board.GET("/quizzes/:id/details", h.navigate(domain.QuestionsPath))
	board.GET("/quizzes/:id/questions", h.navigate(domain.AllQuestionsPath))
}

// Enter handles GET /teacher/quizzes. It resumes the board named by the
// session cookie or opens a new one, then redirects to it.
func (h *PageHandler) Enter(c *gin.Context) {
	if sid, err := c.Cookie(h.cookie); err == nil && sid != "" {
		if _, err := h.sessions.Get(sid); err == nil {
			h.redirect(c, sid)
			return
		}
	}

	board, err := h.sessions.Open(c.Request.Context())
	if err != nil {
		h.log(c.Request.Context()).WarnContext(c.Request.Context(), "opening board failed", slog.Any("error", err))

		resp := dto.MapError(err)
		c.String(dto.HTTPStatusFromCode(resp.Error.Code), resp.Error.Message)

		return
	}

	h.setCookie(c, board.ID(), 0)
	h.redirect(c, board.ID())
}

// Render handles GET /teacher/quizzes/:sid. Unknown sessions go back to the
// entry point.
func (h *PageHandler) Render(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	h.render(c, http.StatusOK, "board", newBoardPage(boardPath(board.ID()), board.View()))
}

// ConfirmDelete handles GET .../quizzes/:id/delete with the confirmation prompt.
func (h *PageHandler) ConfirmDelete(c *gin.Context) {
	board, ok := h.board(c)
	if !ok {
		return
	}

	id := c.Param("id")

	quiz, found := board.Quiz(id)
	if !found {
		h.log(c.Request.Context()).WarnContext(c.Request.Context(), "page action failed",
			slog.String("action", "confirm delete"),
			slog.Any("error", domain.NewNotFoundError("quiz", id)),
		)
		h.redirect(c, board.ID())

		return
	}

	h.render(c, http.StatusOK, "delete", deletePage{
		Prompt: app.DeletePrompt,
		Title:  quiz.Title(),
		Action: boardPath(board.ID()) + "/quizzes/" + url.PathEscape(id) + "/delete",
	})
}

// Close handles POST .../close. The board is torn down and the cookie cleared.
func (h *PageHandler) Close(c *gin.Context) {
	if !h.ownsSession(c, "close") {
		return
	}

	sid := c.Param("sid")

	if err := h.sessions.Close(sid); err != nil {
		h.log(c.Request.Context()).DebugContext(c.Request.Context(), "closing board", slog.Any("error", err))
	}

	h.setCookie(c, "", -1)
	h.render(c, http.StatusOK, "closed", PagePath)
}

func (h *PageHandler) setFilter(c *gin.Context, b *app.Board) error {
	var req dto.FilterRequest
	if err := dto.BindFormAndValidate(c, &req); err != nil {
		return err
	}

	return b.SetFilter(req.CourseID)
}

func (h *PageHandler) create(c *gin.Context, b *app.Board) error {
	var req dto.QuizRequest
	if err := dto.BindFormAndValidate(c, &req); err != nil {
		return err
	}

	_, err := b.Create(c.Request.Context(), req.ToQuiz(""))

	return err
}

func (h *PageHandler) update(c *gin.Context, b *app.Board) error {
	var req dto.QuizRequest
	if err := dto.BindFormAndValidate(c, &req); err != nil {
		return err
	}

	_, err := b.Update(c.Request.Context(), editedQuiz(b, c.Param("id"), &req))

	return err
}

func (h *PageHandler) delete(c *gin.Context, b *app.Board) error {
	var req dto.DeleteRequest
	if err := dto.BindFormAndValidate(c, &req); err != nil {
		return err
	}

	_, err := b.Delete(c.Request.Context(), c.Param("id"), ports.Confirmed(req.Confirmed))

	return err
}

// action runs fn on the board and redirects back to the page either way.
func (h *PageHandler) action(name string, fn func(*gin.Context, *app.Board) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.ownsSession(c, name) {
			return
		}

		board, ok := h.board(c)
		if !ok {
			return
		}

		if err := fn(c, board); err != nil {
			ctx := c.Request.Context()
			h.log(ctx).WarnContext(ctx, "page action failed",
				slog.String("action", name),
				slog.Any("error", err),
			)
		}

		h.redirect(c, board.ID())
	}
}

// navigate redirects to a full-page target for the quiz in :id.
func (h *PageHandler) navigate(target func(string) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := h.board(c); !ok {
			return
		}

		c.Redirect(http.StatusSeeOther, target(c.Param("id")))
	}
}

func (h *PageHandler) board(c *gin.Context) (*app.Board, bool) {
	board, err := h.sessions.Get(c.Param("sid"))
	if err != nil {
		h.log(c.Request.Context()).DebugContext(c.Request.Context(), "unknown board session",
			slog.String("board_id", c.Param("sid")),
		)
		c.Redirect(http.StatusSeeOther, PagePath)

		return nil, false
	}

	tagBoard(c, board, h.logger)

	return board, true
}

// ownsSession reports whether the session cookie names the board in :sid.
// State-changing requests without it are answered with 403.
func (h *PageHandler) ownsSession(c *gin.Context, action string) bool {
	sid := c.Param("sid")

	cookie, err := c.Cookie(h.cookie)
	if err == nil && cookie != "" && subtle.ConstantTimeCompare([]byte(cookie), []byte(sid)) == 1 {
		return true
	}

	ctx := c.Request.Context()
	h.log(ctx).WarnContext(ctx, "page action rejected",
		slog.String("action", action),
		slog.String("board_id", sid),
		slog.Any("error", domain.NewForbiddenError(action, "session cookie does not match board")),
	)
	c.String(http.StatusForbidden, http.StatusText(http.StatusForbidden))
	c.Abort()

	return false
}

func (h *PageHandler) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.log(c.Request.Context()).ErrorContext(c.Request.Context(), "rendering page failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		c.Status(http.StatusInternalServerError)

		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) redirect(c *gin.Context, sid string) {
	c.Redirect(http.StatusSeeOther, boardPath(sid))
}

func (h *PageHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie, value, maxAge, PagePath, "", h.secure, true)
}

func (h *PageHandler) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, h.logger)
}

func boardPath(sid string) string {
	return PagePath + "/" + url.PathEscape(sid)
}

type courseOption struct {
	ID       string
	Name     string
	Selected bool
}

type quizCard struct {
	ID          string
	PathID      string
	Title       string
	Description string
	CourseName  string
}

type modalForm struct {
	Heading     string
	Action      string
	Cancel      string
	Submit      string
	Title       string
	Description string
	Courses     []courseOption
}

type boardPage struct {
	Base    string
	Teacher string
	Filter  string
	Courses []courseOption
	Cards   []quizCard
	Page    domain.PageInfo
	Modal   *modalForm
}

type deletePage struct {
	Prompt string
	Title  string
	Action string
}

func newBoardPage(base string, v app.View) boardPage {
	names := make(map[string]string, len(v.Courses))
	for _, course := range v.Courses {
		names[course.ID] = course.Name
	}

	cards := make([]quizCard, 0, len(v.Quizzes))
	for _, q := range v.Quizzes {
		cards = append(cards, quizCard{
			ID:          q.ID,
			PathID:      url.PathEscape(q.ID),
			Title:       q.Title(),
			Description: q.Description(),
			CourseName:  names[q.CourseID],
		})
	}

	return boardPage{
		Base:    base,
		Teacher: v.Identity.DisplayName(),
		Filter:  v.Filter,
		Courses: courseOptions(v.Courses, v.Filter),
		Cards:   cards,
		Page:    v.Page,
		Modal:   newModalForm(base, v),
	}
}

func newModalForm(base string, v app.View) *modalForm {
	switch v.Modal {
	case domain.ModalAdding:
		return &modalForm{
			Heading: "Add Quiz",
			Action:  base + "/quizzes",
			Cancel:  base + "/modal/close",
			Submit:  "Create",
			Courses: courseOptions(v.Courses, v.Filter),
		}
	case domain.ModalEditing:
		if v.Editing == nil {
			return nil
		}

		return &modalForm{
			Heading:     "Edit Quiz",
			Action:      base + "/quizzes/" + url.PathEscape(v.Editing.ID),
			Cancel:      base + "/modal/close",
			Submit:      "Save",
			Title:       v.Editing.Title(),
			Description: v.Editing.Description(),
			Courses:     courseOptions(v.Courses, v.Editing.CourseID),
		}
	default:
		return nil
	}
}

func courseOptions(courses []domain.Course, selected string) []courseOption {
	out := make([]courseOption, 0, len(courses))
	for _, course := range courses {
		out = append(out, courseOption{ID: course.ID, Name: course.Name, Selected: course.ID == selected})
	}

	return out
}
