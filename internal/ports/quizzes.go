// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quizboard/internal/domain"
)

// QuizBackend is the REST backend owning quizzes and courses.
// Implementations translate transport failures, non-2xx statuses and
// undecodable bodies into domain errors.
type QuizBackend interface {
	// ListQuizzes returns every quiz.
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)

	// ListCourses returns every course.
	ListCourses(ctx context.Context) ([]domain.Course, error)

	// CreateQuiz creates a quiz and returns the backend's stored copy.
	CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)

	// UpdateQuiz replaces the quiz identified by quiz.ID and returns the stored copy.
	UpdateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)

	// DeleteQuiz removes the quiz with the given id.
	DeleteQuiz(ctx context.Context, id string) error
}

// Confirmer gates destructive actions behind a user decision.
// Returning false with a nil error means the user declined.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer whose answer was collected before the call,
// e.g. from a submitted confirmation form or a --force flag.
type Confirmed bool

// Confirm returns the recorded answer.
func (c Confirmed) Confirm(context.Context, string) (bool, error) {
	return bool(c), nil
}

// IdentityProvider resolves the teacher using a board.
// The context carries whatever the transport attached (claims, headers).
type IdentityProvider interface {
	Identity(ctx context.Context) (*domain.Identity, error)
}
