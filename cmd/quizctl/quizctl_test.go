package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/mocks"
	"github.com/jsamuelsen/quizboard/internal/platform/config"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

func testQuizzes() []domain.Quiz {
	quizzes := make([]domain.Quiz, 0, 10)
	for i := 1; i <= 10; i++ {
		course := "c1"
		if i%2 == 0 {
			course = "c2"
		}

		quizzes = append(quizzes, domain.NewQuiz(fmt.Sprintf("q%d", i), course, map[string]string{
			"title": fmt.Sprintf("Quiz %c", 'A'+i-1),
		}))
	}

	return quizzes
}

// execute runs quizctl with args against backend and returns stdout.
func execute(t *testing.T, backend *mocks.MockQuizBackend, stdin string, args ...string) (string, error) {
	t.Helper()

	backend.EXPECT().ListQuizzes(mock.Anything).Return(testQuizzes(), nil).Once()
	backend.EXPECT().ListCourses(mock.Anything).
		Return([]domain.Course{domain.NewCourse("c1", "Math"), domain.NewCourse("c2", "Art")}, nil).Once()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(options{
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		backend: func(*config.Config, *slog.Logger) (ports.QuizBackend, error) {
			return backend, nil
		},
	})
	cmd.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))

	err := cmd.ExecuteContext(context.Background())

	return stdout.String(), err
}

func writeQuizFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quiz.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestList(t *testing.T) {
	out, err := execute(t, mocks.NewMockQuizBackend(t), "", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Quiz A")
	assert.Contains(t, out, "Quiz H")
	assert.NotContains(t, out, "Quiz I")
	assert.Contains(t, out, "Math")
	assert.Contains(t, out, "Page 1 of 2 (10 quizzes)")
}

func TestList_CourseAndPage(t *testing.T) {
	out, err := execute(t, mocks.NewMockQuizBackend(t), "", "list", "--course", "c2", "--page", "9")
	require.NoError(t, err)

	assert.Contains(t, out, "Page 1 of 1 (5 quizzes)")
	assert.Contains(t, out, "Quiz B")
	assert.NotContains(t, out, "Quiz A")
}

func TestCourses(t *testing.T) {
	out, err := execute(t, mocks.NewMockQuizBackend(t), "", "courses")
	require.NoError(t, err)

	assert.Contains(t, out, "c1  Math")
	assert.Contains(t, out, "c2  Art")
}

func TestAdd(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().
		CreateQuiz(mock.Anything, mock.MatchedBy(func(q domain.Quiz) bool {
			return q.ID == "" && q.CourseID == "c1" && q.Title() == "Ratios"
		})).
		RunAndReturn(func(_ context.Context, q domain.Quiz) (domain.Quiz, error) {
			q.ID = "q42"
			return q, nil
		}).
		Once()

	file := writeQuizFile(t, `{"coursequizID": "c1", "title": "Ratios"}`)

	out, err := execute(t, backend, "", "add", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "Created quiz q42.\n", out)
}

func TestAdd_FromStdin(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().CreateQuiz(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, q domain.Quiz) (domain.Quiz, error) {
			q.ID = "q7"
			return q, nil
		}).
		Once()

	out, err := execute(t, backend, `{"coursequizID": "c2", "title": "Stdin"}`, "add", "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "q7")
}

func TestAdd_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing title", `{"coursequizID": "c1"}`, "invalid quiz"},
		{"not json", `nope`, "decoding quiz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, mocks.NewMockQuizBackend(t), "", "add", "--file", writeQuizFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEdit_KeepsUnknownFields(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().
		UpdateQuiz(mock.Anything, mock.MatchedBy(func(q domain.Quiz) bool {
			return q.ID == "q1" && q.Title() == "Renamed" && q.CourseID == "c2"
		})).
		RunAndReturn(func(_ context.Context, q domain.Quiz) (domain.Quiz, error) { return q, nil }).
		Once()

	file := writeQuizFile(t, `{"coursequizID": "c2", "title": "Renamed"}`)

	out, err := execute(t, backend, "", "edit", "q1", "--file", file)
	require.NoError(t, err)
	assert.Equal(t, "Updated quiz q1.\n", out)
}

func TestEdit_UnknownQuiz(t *testing.T) {
	_, err := execute(t, mocks.NewMockQuizBackend(t), "", "edit", "nope", "--file", writeQuizFile(t, `{}`))

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name        string
		stdin       string
		args        []string
		wantDeleted bool
	}{
		{"answer yes", "y\n", []string{"delete", "q1"}, true},
		{"answer YES", "YES\n", []string{"delete", "q1"}, true},
		{"answer no", "n\n", []string{"delete", "q1"}, false},
		{"empty answer", "\n", []string{"delete", "q1"}, false},
		{"end of input", "", []string{"delete", "q1"}, false},
		{"forced", "", []string{"delete", "q1", "--force"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mocks.NewMockQuizBackend(t)
			if tt.wantDeleted {
				backend.EXPECT().DeleteQuiz(mock.Anything, "q1").Return(nil).Once()
			}

			out, err := execute(t, backend, tt.stdin, tt.args...)
			require.NoError(t, err)

			if tt.wantDeleted {
				assert.Contains(t, out, "Deleted quiz q1.")
			} else {
				assert.Contains(t, out, "Cancelled.")
			}
		})
	}
}

func TestDelete_PromptsWithQuestion(t *testing.T) {
	out, err := execute(t, mocks.NewMockQuizBackend(t), "n\n", "delete", "q1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "Are you sure you want to delete this quiz? (y/N): "))
}

func TestDelete_BackendFailure(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().DeleteQuiz(mock.Anything, "q1").Return(domain.NewUnavailableError("quiz-backend", "down")).Once()

	_, err := execute(t, backend, "", "delete", "q1", "--force")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestMountFailure(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().ListQuizzes(mock.Anything).Return(nil, errors.New("refused")).Once()
	backend.EXPECT().ListCourses(mock.Anything).Return(nil, nil).Once()

	cmd := newRootCmd(options{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		backend: func(*config.Config, *slog.Logger) (ports.QuizBackend, error) {
			return backend, nil
		},
	})
	cmd.SetArgs([]string{"--config-dir", t.TempDir(), "list"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading quizzes")
}
