// Package app contains the quiz board use cases.
// A Board is one mounted quiz management view: it owns the quiz list, the
// course list, the course filter, the page cursor and the add/edit modal,
// and keeps them in sync with the quiz backend through ports.QuizBackend.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// ErrBoardClosed is returned for operations on a closed board and for backend
// answers that arrive after the board was closed.
var ErrBoardClosed = errors.New("board closed")

// DeletePrompt is the question put to the Confirmer before a delete.
const DeletePrompt = "Are you sure you want to delete this quiz?"

// BoardConfig contains the dependencies of a board.
type BoardConfig struct {
	ID       string
	Backend  ports.QuizBackend
	Identity *domain.Identity
	Executor *Executor
	Metrics  *Metrics
	Logger   *slog.Logger
}

// Board is the view state of one quiz management page.
// It is safe for concurrent use. Backend calls run outside the lock and
// their results are applied only after a successful answer.
type Board struct {
	id       string
	backend  ports.QuizBackend
	identity *domain.Identity
	exec     *Executor
	metrics  *Metrics
	logger   *slog.Logger

	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	closed  bool
	quizzes []domain.Quiz
	courses []domain.Course
	filter  string
	page    int
	modal   domain.Modal
}

// View is an immutable snapshot of a board.
type View struct {
	ID       string
	Identity *domain.Identity
	Quizzes  []domain.Quiz
	Courses  []domain.Course
	Filter   string
	Page     domain.PageInfo
	Modal    domain.ModalKind
	Editing  *domain.Quiz
}

// NewBoard creates an empty, unmounted board.
func NewBoard(cfg BoardConfig) *Board {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(logger)
	}

	identity := cfg.Identity
	if identity == nil {
		identity = domain.Anonymous()
	}

	lifetime, cancel := context.WithCancel(context.Background())

	return &Board{
		id:       cfg.ID,
		backend:  cfg.Backend,
		identity: identity,
		exec:     exec,
		metrics:  cfg.Metrics,
		logger:   logger.With(slog.String("component", "app.Board")),
		lifetime: lifetime,
		cancel:   cancel,
		page:     1,
	}
}

// ID returns the board session id.
func (b *Board) ID() string {
	return b.id
}

// Identity returns the teacher resolved when the board was opened.
func (b *Board) Identity() *domain.Identity {
	return b.identity
}

// Mount loads quizzes and courses concurrently. Each load fails independently
// and leaves its own list unchanged; the joined error reports both.
func (b *Board) Mount(ctx context.Context) error {
	return loadAll(ctx, b.ReloadQuizzes, b.ReloadCourses)
}

// ReloadQuizzes replaces the quiz list with the backend's. Quizzes the
// backend sent without an id are dropped and reported as integrity errors.
func (b *Board) ReloadQuizzes(ctx context.Context) error {
	ctx, done := b.scope(ctx)
	defer done()

	b.metrics.attempted(OpReloadQuizzes)

	_, err := Execute(ctx, b.exec, Operation[struct{}, []domain.Quiz, []domain.Quiz, struct{}]{
		Name: OpReloadQuizzes,
		Validate: func(context.Context, struct{}) error {
			return b.ensureOpen()
		},
		Perform: func(ctx context.Context, _ struct{}) ([]domain.Quiz, error) {
			return b.backend.ListQuizzes(ctx)
		},
		Verify: func(ctx context.Context, _ struct{}, quizzes []domain.Quiz) ([]domain.Quiz, error) {
			return b.keepIdentified(ctx, quizzes), nil
		},
		Archive: func(_ context.Context, _ struct{}, quizzes []domain.Quiz) error {
			return b.mutate(func() error {
				b.quizzes = quizzes
				return nil
			})
		},
	}, struct{}{})
	if err != nil {
		return b.fail(ctx, OpReloadQuizzes, err)
	}

	return nil
}

// ReloadCourses replaces the course list with the backend's.
func (b *Board) ReloadCourses(ctx context.Context) error {
	ctx, done := b.scope(ctx)
	defer done()

	b.metrics.attempted(OpReloadCourses)

	_, err := Execute(ctx, b.exec, Operation[struct{}, []domain.Course, []domain.Course, struct{}]{
		Name: OpReloadCourses,
		Validate: func(context.Context, struct{}) error {
			return b.ensureOpen()
		},
		Perform: func(ctx context.Context, _ struct{}) ([]domain.Course, error) {
			return b.backend.ListCourses(ctx)
		},
		Verify: func(_ context.Context, _ struct{}, courses []domain.Course) ([]domain.Course, error) {
			return courses, nil
		},
		Archive: func(_ context.Context, _ struct{}, courses []domain.Course) error {
			return b.mutate(func() error {
				b.courses = courses
				return nil
			})
		},
	}, struct{}{})
	if err != nil {
		return b.fail(ctx, OpReloadCourses, err)
	}

	return nil
}

// Delete asks confirmer before deleting the quiz with id.
// It reports whether the backend delete happened. A declined confirmation
// issues no backend call and is not an error.
func (b *Board) Delete(ctx context.Context, id string, confirmer ports.Confirmer) (bool, error) {
	if err := b.ensureOpen(); err != nil {
		return false, err
	}

	ok, err := confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return false, b.fail(ctx, OpDeleteQuiz, fmt.Errorf("confirmation: %w", err), slog.String("quiz_id", id))
	}

	if !ok {
		b.log(ctx).DebugContext(ctx, "delete declined", slog.String("quiz_id", id))
		return false, nil
	}

	ctx, done := b.scope(ctx)
	defer done()

	b.metrics.attempted(OpDeleteQuiz)

	_, err = Execute(ctx, b.exec, Operation[string, struct{}, struct{}, struct{}]{
		Name: OpDeleteQuiz,
		Validate: func(_ context.Context, id string) error {
			if id == "" {
				return domain.NewValidationError("id", "is required")
			}

			return b.ensureOpen()
		},
		Perform: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, b.backend.DeleteQuiz(ctx, id)
		},
		Archive: func(_ context.Context, id string, _ struct{}) error {
			return b.mutate(func() error {
				b.quizzes = slices.DeleteFunc(slices.Clone(b.quizzes), func(q domain.Quiz) bool {
					return q.ID == id
				})

				return nil
			})
		},
	}, id)
	if err != nil {
		return false, b.fail(ctx, OpDeleteQuiz, err, slog.String("quiz_id", id))
	}

	return true, nil
}

// Create posts quiz and appends the backend's copy, closing the add modal.
// On failure the list and the modal are left as they were. A created quiz
// without an id cannot be addressed locally, so the list is reloaded instead.
func (b *Board) Create(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	ctx, done := b.scope(ctx)
	defer done()

	b.metrics.attempted(OpCreateQuiz)

	created, err := Execute(ctx, b.exec, Operation[domain.Quiz, domain.Quiz, domain.Quiz, domain.Quiz]{
		Name: OpCreateQuiz,
		Validate: func(context.Context, domain.Quiz) error {
			return b.ensureOpen()
		},
		Perform: func(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
			return b.backend.CreateQuiz(ctx, quiz)
		},
		Verify: func(_ context.Context, _ domain.Quiz, created domain.Quiz) (domain.Quiz, error) {
			return created, nil
		},
		Archive: func(_ context.Context, _ domain.Quiz, created domain.Quiz) error {
			return b.mutate(func() error {
				b.modal = b.modal.CloseIf(domain.ModalAdding)
				if created.ID == "" {
					return nil
				}

				quizzes := slices.DeleteFunc(slices.Clone(b.quizzes), func(q domain.Quiz) bool {
					return q.ID == created.ID
				})
				b.quizzes = append(quizzes, created)

				return nil
			})
		},
		Respond: respondClone,
	}, quiz)
	if err != nil {
		return domain.Quiz{}, b.fail(ctx, OpCreateQuiz, err)
	}

	if created.ID == "" {
		b.integrity(ctx, OpCreateQuiz, domain.NewIntegrityError("quiz", -1, "missing id"))

		// The reload logs its own failure; the create itself succeeded.
		_ = b.ReloadQuizzes(ctx)
	}

	return created, nil
}

// Update puts quiz to the backend and replaces the item whose id matches the
// returned copy, closing the edit modal and clearing the selection.
func (b *Board) Update(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	ctx, done := b.scope(ctx)
	defer done()

	b.metrics.attempted(OpUpdateQuiz)

	updated, err := Execute(ctx, b.exec, Operation[domain.Quiz, domain.Quiz, domain.Quiz, domain.Quiz]{
		Name: OpUpdateQuiz,
		Validate: func(_ context.Context, quiz domain.Quiz) error {
			if quiz.ID == "" {
				return domain.NewValidationError("id", "is required")
			}

			return b.ensureOpen()
		},
		Perform: func(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
			return b.backend.UpdateQuiz(ctx, quiz)
		},
		Verify: func(ctx context.Context, sent domain.Quiz, updated domain.Quiz) (domain.Quiz, error) {
			if updated.ID == "" {
				b.integrity(ctx, OpUpdateQuiz, domain.NewIntegrityError("quiz", -1, "missing id"))
				updated.ID = sent.ID
			}

			return updated, nil
		},
		Archive: func(_ context.Context, _ domain.Quiz, updated domain.Quiz) error {
			return b.mutate(func() error {
				replaced := false
				quizzes := make([]domain.Quiz, 0, len(b.quizzes))

				for _, q := range b.quizzes {
					if q.ID != updated.ID {
						quizzes = append(quizzes, q)
						continue
					}

					if !replaced {
						quizzes = append(quizzes, updated)
						replaced = true
					}
				}

				b.quizzes = quizzes
				b.modal = b.modal.CloseIf(domain.ModalEditing)

				return nil
			})
		},
		Respond: respondClone,
	}, quiz)
	if err != nil {
		return domain.Quiz{}, b.fail(ctx, OpUpdateQuiz, err, slog.String("quiz_id", quiz.ID))
	}

	return updated, nil
}

// SetFilter selects a course, or all courses for "". The page is clamped.
func (b *Board) SetFilter(courseID string) error {
	return b.mutate(func() error {
		b.filter = courseID
		return nil
	})
}

// NextPage moves forward one page, staying within range.
func (b *Board) NextPage() error {
	return b.mutate(func() error {
		b.page++
		return nil
	})
}

// PrevPage moves back one page, staying within range.
func (b *Board) PrevPage() error {
	return b.mutate(func() error {
		b.page--
		return nil
	})
}

// GoToPage moves to page, clamped to the available pages.
func (b *Board) GoToPage(page int) error {
	return b.mutate(func() error {
		b.page = page
		return nil
	})
}

// OpenAdd opens the add form.
func (b *Board) OpenAdd() error {
	return b.mutate(func() error {
		m, err := b.modal.OpenAdd()
		if err != nil {
			return err
		}

		b.modal = m

		return nil
	})
}

// OpenEdit opens the edit form on a snapshot of the quiz with id.
func (b *Board) OpenEdit(id string) error {
	return b.mutate(func() error {
		idx := slices.IndexFunc(b.quizzes, func(q domain.Quiz) bool { return q.ID == id })
		if idx < 0 {
			return domain.NewNotFoundError("quiz", id)
		}

		m, err := b.modal.OpenEdit(b.quizzes[idx])
		if err != nil {
			return err
		}

		b.modal = m

		return nil
	})
}

// CloseModal closes whichever form is open.
func (b *Board) CloseModal() error {
	return b.mutate(func() error {
		b.modal = b.modal.Close()
		return nil
	})
}

// Quiz returns a copy of the quiz with id.
func (b *Board) Quiz(id string) (domain.Quiz, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.IndexFunc(b.quizzes, func(q domain.Quiz) bool { return q.ID == id })
	if idx < 0 {
		return domain.Quiz{}, false
	}

	return b.quizzes[idx].Clone(), true
}

// Quizzes returns a copy of the full, unfiltered quiz list.
func (b *Board) Quizzes() []domain.Quiz {
	b.mu.Lock()
	defer b.mu.Unlock()

	return cloneQuizzes(b.quizzes)
}

// View returns a snapshot of the visible page and the modal.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	visible, info := domain.Paginate(b.quizzes, b.filter, b.page)

	v := View{
		ID:       b.id,
		Identity: b.identity,
		Quizzes:  cloneQuizzes(visible),
		Courses:  slices.Clone(b.courses),
		Filter:   b.filter,
		Page:     info,
		Modal:    b.modal.Kind(),
	}

	if q, ok := b.modal.Editing(); ok {
		v.Editing = &q
	}

	return v
}

// Close tears the board down. In-flight backend calls are cancelled and
// their answers are discarded. Close is idempotent.
func (b *Board) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.closed = true
	b.mu.Unlock()

	b.cancel()
}

// Closed reports whether Close was called.
func (b *Board) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// scope derives an operation context cancelled by the caller or by Close.
func (b *Board) scope(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(b.lifetime, func() { cancel(ErrBoardClosed) })

	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}

func (b *Board) ensureOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBoardClosed
	}

	return nil
}

// mutate applies fn under the lock to an open board and re-clamps the page.
func (b *Board) mutate(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBoardClosed
	}

	if err := fn(); err != nil {
		return err
	}

	filtered := domain.FilterByCourse(b.quizzes, b.filter)
	b.page = domain.ClampPage(b.page, domain.TotalPages(len(filtered)))

	return nil
}

// fail logs and counts a failed operation. Failures caused by Close are
// dropped quietly and reported as ErrBoardClosed.
func (b *Board) fail(ctx context.Context, op string, err error, attrs ...slog.Attr) error {
	if errors.Is(err, ErrBoardClosed) || b.Closed() {
		b.log(ctx).DebugContext(ctx, "discarded result for closed board",
			slog.String("operation", op),
			slog.Any("error", err),
		)

		return ErrBoardClosed
	}

	b.metrics.failed(op)

	args := []any{slog.String("operation", op)}
	if step, ok := GetExecutionStep(err); ok {
		args = append(args, slog.String("step", string(step)))
	}

	for _, a := range attrs {
		args = append(args, a)
	}

	args = append(args, slog.Any("error", err))
	b.log(ctx).ErrorContext(ctx, "quiz board operation failed", args...)

	return fmt.Errorf("%s: %w", op, err)
}

func (b *Board) log(ctx context.Context) *slog.Logger {
	logger := logging.FromContextOr(ctx, b.logger)
	if logging.BoardIDFromContext(ctx) == b.id {
		return logger
	}

	return logger.With(slog.String("board_id", b.id))
}

// keepIdentified drops quizzes without an id, reporting each one.
func (b *Board) keepIdentified(ctx context.Context, quizzes []domain.Quiz) []domain.Quiz {
	var violations []error

	kept := make([]domain.Quiz, 0, len(quizzes))
	for i, q := range quizzes {
		if q.ID == "" {
			violations = append(violations, domain.NewIntegrityError("quiz", i, "missing id"))
			continue
		}

		kept = append(kept, q)
	}

	if len(violations) > 0 {
		b.integrity(ctx, OpReloadQuizzes, errors.Join(violations...), slog.Int("dropped", len(violations)))
	}

	return kept
}

// integrity logs and counts backend data that was accepted only in part.
func (b *Board) integrity(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	b.metrics.failed(op)

	args := []any{slog.String("operation", op)}
	for _, a := range attrs {
		args = append(args, a)
	}

	args = append(args, slog.Any("error", err))
	b.log(ctx).ErrorContext(ctx, "quiz backend integrity violation", args...)
}

func respondClone(_ context.Context, _ domain.Quiz, stored domain.Quiz) (domain.Quiz, error) {
	return stored.Clone(), nil
}

func cloneQuizzes(in []domain.Quiz) []domain.Quiz {
	out := make([]domain.Quiz, len(in))
	for i, q := range in {
		out[i] = q.Clone()
	}

	return out
}
