package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jsamuelsen/quizboard/internal/adapters/clients"
	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/platform/logging"
)

// Backend resource paths.
const (
	quizzesPath = "/quizzes"
	coursesPath = "/courses"
)

// QuizBackendConfig contains configuration for the quiz backend adapter.
type QuizBackendConfig struct {
	// Client must have its BaseURL set to the backend root.
	Client *clients.Client

	Logger *slog.Logger
}

// QuizBackend implements ports.QuizBackend and ports.HealthChecker over the
// backend's REST API.
type QuizBackend struct {
	BaseAdapter

	logger *slog.Logger
}

// NewQuizBackend creates the adapter. Panics if Client is nil.
func NewQuizBackend(cfg QuizBackendConfig) *QuizBackend {
	if cfg.Client == nil {
		panic("QuizBackend: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuizBackend{
		BaseAdapter: NewBaseAdapter(cfg.Client),
		logger:      logger.With(slog.String("component", "acl.QuizBackend")),
	}
}

// ListQuizzes fetches GET /quizzes.
func (b *QuizBackend) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	call := b.call("list quizzes", "quiz", "")

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Get(ctx, quizzesPath)
	})
	if err != nil {
		return nil, err
	}

	quizzes, err := DecodeResponse[[]domain.Quiz](body, call)
	if err != nil {
		return nil, err
	}

	b.trace(ctx, "decoded quizzes", slog.Int("count", len(quizzes)))

	return quizzes, nil
}

// ListCourses fetches GET /courses.
func (b *QuizBackend) ListCourses(ctx context.Context) ([]domain.Course, error) {
	call := b.call("list courses", "course", "")

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Get(ctx, coursesPath)
	})
	if err != nil {
		return nil, err
	}

	courses, err := DecodeResponse[[]domain.Course](body, call)
	if err != nil {
		return nil, err
	}

	b.trace(ctx, "decoded courses", slog.Int("count", len(courses)))

	return courses, nil
}

// CreateQuiz sends POST /quizzes and returns the created quiz.
func (b *QuizBackend) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	call := b.call("create quiz", "quiz", "")

	payload, err := EncodeBody(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Post(ctx, quizzesPath, payload)
	})
	if err != nil {
		return domain.Quiz{}, err
	}

	created, err := DecodeResponse[domain.Quiz](body, call)
	if err != nil {
		return domain.Quiz{}, err
	}

	b.trace(ctx, "created quiz", slog.String("quiz_id", created.ID))

	return created, nil
}

// UpdateQuiz sends PUT /quizzes/{id} and returns the updated quiz.
func (b *QuizBackend) UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := ValidateRequired(quiz.ID, "id"); err != nil {
		return domain.Quiz{}, err
	}

	call := b.call("update quiz", "quiz", quiz.ID)

	payload, err := EncodeBody(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Put(ctx, quizPath(quiz.ID), payload)
	})
	if err != nil {
		return domain.Quiz{}, err
	}

	updated, err := DecodeResponse[domain.Quiz](body, call)
	if err != nil {
		return domain.Quiz{}, err
	}

	b.trace(ctx, "updated quiz", slog.String("quiz_id", updated.ID))

	return updated, nil
}

// DeleteQuiz sends DELETE /quizzes/{id}. Any 2xx is success; the body is ignored.
func (b *QuizBackend) DeleteQuiz(ctx context.Context, id string) error {
	if err := ValidateRequired(id, "id"); err != nil {
		return err
	}

	call := b.call("delete quiz", "quiz", id)

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Delete(ctx, quizPath(id))
	})
	if err != nil {
		return err
	}

	closeQuietly(body)
	b.trace(ctx, "deleted quiz", slog.String("quiz_id", id))

	return nil
}

// Name implements ports.HealthChecker.
func (b *QuizBackend) Name() string {
	return b.serviceName
}

// Check implements ports.HealthChecker by listing courses, the cheaper of
// the two collections.
func (b *QuizBackend) Check(ctx context.Context) error {
	if stats := b.client.CircuitStats(); stats.State == clients.StateOpen {
		return fmt.Errorf("circuit open, retrying after %s", stats.RetryAt.Format(time.RFC3339))
	}

	call := b.call("health check", "course", "")

	body, err := b.Do(ctx, call, func(ctx context.Context) (*http.Response, error) {
		return b.client.Get(ctx, coursesPath)
	})
	if err != nil {
		return err
	}

	closeQuietly(body)

	return nil
}

func (b *QuizBackend) trace(ctx context.Context, msg string, attrs ...slog.Attr) {
	logging.FromContextOr(ctx, b.logger).LogAttrs(ctx, logging.LevelTrace, msg, attrs...)
}

func quizPath(id string) string {
	return quizzesPath + "/" + url.PathEscape(id)
}
