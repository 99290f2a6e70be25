package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/mocks"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics(t *testing.T) *Metrics {
	t.Helper()

	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	return m
}

func makeQuizzes(n int, course func(i int) string) []domain.Quiz {
	out := make([]domain.Quiz, 0, n)
	for i := range n {
		out = append(out, domain.NewQuiz(fmt.Sprintf("q%d", i+1), course(i), map[string]string{
			"title": fmt.Sprintf("Quiz %d", i+1),
		}))
	}

	return out
}

func sameCourse(id string) func(int) string {
	return func(int) string { return id }
}

func ids(quizzes []domain.Quiz) []string {
	out := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, q.ID)
	}

	return out
}

func testCourses() []domain.Course {
	return []domain.Course{domain.NewCourse("c1", "Math"), domain.NewCourse("c2", "Art")}
}

// mountedBoard returns a board mounted with quizzes and the test courses.
func mountedBoard(t *testing.T, backend *mocks.MockQuizBackend, quizzes []domain.Quiz, m *Metrics, logger *slog.Logger) *Board {
	t.Helper()

	backend.EXPECT().ListQuizzes(mock.Anything).Return(quizzes, nil).Once()
	backend.EXPECT().ListCourses(mock.Anything).Return(testCourses(), nil).Once()

	if logger == nil {
		logger = discardLogger()
	}

	board := NewBoard(BoardConfig{ID: "b-1", Backend: backend, Metrics: m, Logger: logger})
	require.NoError(t, board.Mount(context.Background()))

	return board
}

func TestNewBoard_Defaults(t *testing.T) {
	board := NewBoard(BoardConfig{Backend: mocks.NewMockQuizBackend(t)})

	view := board.View()
	assert.Equal(t, domain.AnonymousSubject, view.Identity.Subject)
	assert.Equal(t, 1, view.Page.Page)
	assert.Equal(t, domain.ModalClosed, view.Modal)
	assert.Empty(t, view.Quizzes)
	assert.False(t, board.Closed())
}

func TestBoard_Mount(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(3, sameCourse("c1")), testMetrics(t), nil)

	view := board.View()
	assert.Equal(t, []string{"q1", "q2", "q3"}, ids(view.Quizzes))
	assert.Equal(t, testCourses(), view.Courses)
}

func TestBoard_Mount_FailuresAreIndependent(t *testing.T) {
	tests := []struct {
		name        string
		quizErr     error
		courseErr   error
		wantQuizzes int
		wantCourses int
		failedOp    string
	}{
		{
			name:        "quizzes fail",
			quizErr:     domain.NewUnavailableError("quiz-backend", "connection refused"),
			wantQuizzes: 0,
			wantCourses: 2,
			failedOp:    OpReloadQuizzes,
		},
		{
			name:        "courses fail",
			courseErr:   domain.NewUnavailableError("quiz-backend", "bad json"),
			wantQuizzes: 2,
			wantCourses: 0,
			failedOp:    OpReloadCourses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mocks.NewMockQuizBackend(t)
			m := testMetrics(t)

			var quizzes []domain.Quiz
			if tt.quizErr == nil {
				quizzes = makeQuizzes(2, sameCourse("c1"))
			}

			var courses []domain.Course
			if tt.courseErr == nil {
				courses = testCourses()
			}

			backend.EXPECT().ListQuizzes(mock.Anything).Return(quizzes, tt.quizErr)
			backend.EXPECT().ListCourses(mock.Anything).Return(courses, tt.courseErr)

			board := NewBoard(BoardConfig{Backend: backend, Metrics: m, Logger: discardLogger()})
			err := board.Mount(context.Background())

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))

			view := board.View()
			assert.Len(t, board.Quizzes(), tt.wantQuizzes)
			assert.Len(t, view.Courses, tt.wantCourses)
			assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues(tt.failedOp)), 0)
			assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues(OpReloadQuizzes)), 0)
			assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues(OpReloadCourses)), 0)
		})
	}
}

func TestBoard_ReloadQuizzes_DropsQuizzesWithoutID(t *testing.T) {
	var logs bytes.Buffer

	backend := mocks.NewMockQuizBackend(t)
	m := testMetrics(t)

	listed := append(makeQuizzes(9, sameCourse("c1")), domain.NewQuiz("", "c1", map[string]string{"title": "No id"}))
	backend.EXPECT().ListQuizzes(mock.Anything).Return(listed, nil).Once()
	backend.EXPECT().ListCourses(mock.Anything).Return(testCourses(), nil).Once()

	board := NewBoard(BoardConfig{ID: "b-1", Backend: backend, Metrics: m, Logger: slog.New(slog.NewJSONHandler(&logs, nil))})
	require.NoError(t, board.Mount(context.Background()))

	assert.Equal(t, ids(makeQuizzes(9, sameCourse("c1"))), ids(board.Quizzes()))

	view := board.View()
	assert.Len(t, view.Quizzes, domain.PageSize)
	assert.Equal(t, 2, view.Page.TotalPages)

	assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues(OpReloadQuizzes)), 0)
	assert.Contains(t, logs.String(), "quiz backend integrity violation")
	assert.Contains(t, logs.String(), "quiz at index 9: missing id")
	assert.Contains(t, logs.String(), `"dropped":1`)
}

func TestBoard_TenQuizzesPagination(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(10, sameCourse("c1")), testMetrics(t), nil)

	view := board.View()
	assert.Equal(t, []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8"}, ids(view.Quizzes))
	assert.Equal(t, 2, view.Page.TotalPages)
	assert.False(t, view.Page.HasPrev)
	assert.True(t, view.Page.HasNext)

	require.NoError(t, board.NextPage())

	view = board.View()
	assert.Equal(t, []string{"q9", "q10"}, ids(view.Quizzes))
	assert.Equal(t, 2, view.Page.Page)

	require.NoError(t, board.NextPage())
	assert.Equal(t, 2, board.View().Page.Page, "next is clamped at the last page")

	require.NoError(t, board.PrevPage())
	require.NoError(t, board.PrevPage())
	assert.Equal(t, 1, board.View().Page.Page, "prev is clamped at the first page")

	require.NoError(t, board.GoToPage(99))
	assert.Equal(t, 2, board.View().Page.Page)
}

func TestBoard_SetFilter(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	course := func(i int) string {
		if i%2 == 0 {
			return "c1"
		}

		return "c2"
	}
	board := mountedBoard(t, backend, makeQuizzes(20, course), testMetrics(t), nil)

	require.NoError(t, board.GoToPage(3))
	require.NoError(t, board.SetFilter("c2"))

	view := board.View()
	assert.Equal(t, "c2", view.Filter)
	assert.Equal(t, 2, view.Page.Page, "page is clamped to the filtered set")
	assert.Equal(t, 10, view.Page.TotalItems)

	for _, q := range view.Quizzes {
		assert.Equal(t, "c2", q.CourseID)
	}

	require.NoError(t, board.SetFilter("unknown"))

	view = board.View()
	assert.Equal(t, 1, view.Page.Page)
	assert.Empty(t, view.Quizzes)

	require.NoError(t, board.SetFilter(""))
	assert.Equal(t, 20, board.View().Page.TotalItems)
	assert.Len(t, board.Quizzes(), 20, "filtering never mutates the list")
}

func TestBoard_Delete(t *testing.T) {
	tests := []struct {
		name        string
		confirm     bool
		confirmErr  error
		backendErr  error
		callBackend bool
		wantDeleted bool
		wantErr     bool
		wantIDs     int
	}{
		{
			name:        "declined issues no call",
			confirm:     false,
			callBackend: false,
			wantIDs:     10,
		},
		{
			name:        "confirmed removes item",
			confirm:     true,
			callBackend: true,
			wantDeleted: true,
			wantIDs:     9,
		},
		{
			name:        "backend failure leaves list unchanged",
			confirm:     true,
			backendErr:  domain.NewNotFoundError("quiz", "q3"),
			callBackend: true,
			wantErr:     true,
			wantIDs:     10,
		},
		{
			name:       "confirmer failure issues no call",
			confirmErr: errors.New("stdin closed"),
			wantErr:    true,
			wantIDs:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := mocks.NewMockQuizBackend(t)
			confirmer := mocks.NewMockConfirmer(t)
			m := testMetrics(t)
			board := mountedBoard(t, backend, makeQuizzes(10, sameCourse("c1")), m, nil)

			confirmer.EXPECT().Confirm(mock.Anything, DeletePrompt).Return(tt.confirm, tt.confirmErr)

			if tt.callBackend {
				backend.EXPECT().DeleteQuiz(mock.Anything, "q3").Return(tt.backendErr)
			}

			deleted, err := board.Delete(context.Background(), "q3", confirmer)

			if tt.wantErr {
				require.Error(t, err)
				assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues(OpDeleteQuiz)), 0)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantDeleted, deleted)

			remaining := board.Quizzes()
			assert.Len(t, remaining, tt.wantIDs)

			if tt.wantDeleted {
				assert.NotContains(t, ids(remaining), "q3")
			}
		})
	}
}

func TestBoard_Delete_ClampsPage(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(9, sameCourse("c1")), testMetrics(t), nil)

	require.NoError(t, board.NextPage())
	assert.Equal(t, 2, board.View().Page.Page)

	backend.EXPECT().DeleteQuiz(mock.Anything, "q9").Return(nil)

	deleted, err := board.Delete(context.Background(), "q9", ports.Confirmed(true))
	require.NoError(t, err)
	assert.True(t, deleted)

	view := board.View()
	assert.Equal(t, 1, view.Page.Page)
	assert.Equal(t, 1, view.Page.TotalPages)
}

func TestBoard_Create(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	require.NoError(t, board.OpenAdd())
	assert.Equal(t, domain.ModalAdding, board.View().Modal)

	draft := domain.NewQuiz("", "c2", map[string]string{"title": "Geometry"})
	stored := domain.NewQuiz("q-new", "c2", map[string]string{"title": "Geometry"})
	backend.EXPECT().CreateQuiz(mock.Anything, draft).Return(stored, nil)

	created, err := board.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "q-new", created.ID)

	all := ids(board.Quizzes())
	assert.Equal(t, []string{"q1", "q2", "q-new"}, all)
	assert.Equal(t, domain.ModalClosed, board.View().Modal)
}

func TestBoard_Create_ReturnedIDAppearsOnce(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	backend.EXPECT().CreateQuiz(mock.Anything, mock.Anything).
		Return(domain.NewQuiz("q2", "c1", map[string]string{"title": "Again"}), nil)

	_, err := board.Create(context.Background(), domain.NewQuiz("", "c1", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2"}, ids(board.Quizzes()))
}

func TestBoard_Create_FailureKeepsModalOpen(t *testing.T) {
	var logs bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	backend := mocks.NewMockQuizBackend(t)
	m := testMetrics(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), m, logger)

	require.NoError(t, board.OpenAdd())

	backend.EXPECT().CreateQuiz(mock.Anything, mock.Anything).
		Return(domain.Quiz{}, domain.NewValidationError("", "title is required"))

	_, err := board.Create(context.Background(), domain.NewQuiz("", "c1", nil))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	assert.Equal(t, []string{"q1", "q2"}, ids(board.Quizzes()))
	assert.Equal(t, domain.ModalAdding, board.View().Modal)
	assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues(OpCreateQuiz)), 0)

	assert.Contains(t, logs.String(), "quiz board operation failed")
	assert.Contains(t, logs.String(), `"operation":"create_quiz"`)
	assert.Contains(t, logs.String(), `"level":"ERROR"`)
}

func TestBoard_Create_AnswerWithoutIDReloads(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	m := testMetrics(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), m, nil)

	require.NoError(t, board.OpenAdd())

	backend.EXPECT().CreateQuiz(mock.Anything, mock.Anything).Return(domain.NewQuiz("", "c1", nil), nil).Once()
	backend.EXPECT().ListQuizzes(mock.Anything).Return(makeQuizzes(3, sameCourse("c1")), nil).Once()

	_, err := board.Create(context.Background(), domain.NewQuiz("", "c1", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"q1", "q2", "q3"}, ids(board.Quizzes()))
	assert.Equal(t, domain.ModalClosed, board.View().Modal)
	assert.InDelta(t, 1, testutil.ToFloat64(m.failures.WithLabelValues(OpCreateQuiz)), 0)
}

func TestBoard_Update_AnswerWithoutIDKeepsSentID(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	backend.EXPECT().UpdateQuiz(mock.Anything, mock.Anything).
		Return(domain.NewQuiz("", "c2", map[string]string{"title": "Renamed"}), nil).Once()

	_, err := board.Update(context.Background(), domain.NewQuiz("q2", "c2", map[string]string{"title": "Renamed"}))
	require.NoError(t, err)

	quiz, ok := board.Quiz("q2")
	require.True(t, ok)
	assert.Equal(t, "Renamed", quiz.Title())
	assert.Len(t, board.Quizzes(), 2)
}

func TestBoard_Update(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(3, sameCourse("c1")), testMetrics(t), nil)

	require.NoError(t, board.OpenEdit("q2"))

	view := board.View()
	require.NotNil(t, view.Editing)
	assert.Equal(t, "q2", view.Editing.ID)

	edit := domain.NewQuiz("q2", "c2", map[string]string{"title": "Renamed"})
	backend.EXPECT().UpdateQuiz(mock.Anything, edit).Return(edit, nil)

	_, err := board.Update(context.Background(), edit)
	require.NoError(t, err)

	all := board.Quizzes()
	assert.Equal(t, []string{"q1", "q2", "q3"}, ids(all))
	assert.Equal(t, "Renamed", all[1].Title())
	assert.Equal(t, "c2", all[1].CourseID)

	view = board.View()
	assert.Equal(t, domain.ModalClosed, view.Modal)
	assert.Nil(t, view.Editing)
}

func TestBoard_Update_Failure(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(3, sameCourse("c1")), testMetrics(t), nil)

	require.NoError(t, board.OpenEdit("q1"))

	backend.EXPECT().UpdateQuiz(mock.Anything, mock.Anything).
		Return(domain.Quiz{}, domain.NewUnavailableError("quiz-backend", "503"))

	_, err := board.Update(context.Background(), domain.NewQuiz("q1", "c1", map[string]string{"title": "X"}))
	require.Error(t, err)

	assert.Equal(t, "Quiz 1", board.Quizzes()[0].Title())
	assert.Equal(t, domain.ModalEditing, board.View().Modal)
}

func TestBoard_Update_RequiresID(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(1, sameCourse("c1")), testMetrics(t), nil)

	_, err := board.Update(context.Background(), domain.NewQuiz("", "c1", nil))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	step, _ := GetExecutionStep(err)
	assert.Equal(t, StepValidate, step)
}

func TestBoard_ModalTransitions(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	err := board.OpenEdit("missing")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, board.OpenAdd())

	err = board.OpenEdit("q1")
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, domain.ModalAdding, board.View().Modal)

	require.NoError(t, board.CloseModal())
	require.NoError(t, board.OpenEdit("q1"))
	assert.Equal(t, domain.ModalEditing, board.View().Modal)

	require.NoError(t, board.CloseModal())
	assert.Equal(t, domain.ModalClosed, board.View().Modal)
}

func TestBoard_ViewIsSnapshot(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	view := board.View()
	view.Quizzes[0].SetField("title", "Mutated")
	view.Courses[0] = domain.NewCourse("x", "y")

	again := board.View()
	assert.Equal(t, "Quiz 1", again.Quizzes[0].Title())
	assert.Equal(t, "Math", again.Courses[0].Name)
}

func TestBoard_Close_DiscardsLateAnswer(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	m := testMetrics(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), m, nil)

	started := make(chan struct{})
	release := make(chan struct{})

	backend.EXPECT().ListQuizzes(mock.Anything).RunAndReturn(func(context.Context) ([]domain.Quiz, error) {
		close(started)
		<-release

		return makeQuizzes(5, sameCourse("c1")), nil
	}).Once()

	errc := make(chan error, 1)

	go func() { errc <- board.ReloadQuizzes(context.Background()) }()

	<-started
	board.Close()
	close(release)

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrBoardClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("reload did not return")
	}

	assert.Len(t, board.Quizzes(), 2)
	assert.InDelta(t, 0, testutil.ToFloat64(m.failures.WithLabelValues(OpReloadQuizzes)), 0)
}

func TestBoard_Close_CancelsInFlightCall(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, nil, testMetrics(t), nil)

	started := make(chan struct{})
	causes := make(chan error, 1)

	backend.EXPECT().CreateQuiz(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ domain.Quiz) (domain.Quiz, error) {
			close(started)
			<-ctx.Done()
			causes <- context.Cause(ctx)

			return domain.Quiz{}, ctx.Err()
		})

	errc := make(chan error, 1)

	go func() {
		_, err := board.Create(context.Background(), domain.NewQuiz("", "c1", nil))
		errc <- err
	}()

	<-started
	board.Close()

	require.ErrorIs(t, <-errc, ErrBoardClosed)
	require.ErrorIs(t, <-causes, ErrBoardClosed)
	assert.Empty(t, board.Quizzes())
}

func TestBoard_ClosedRejectsOperations(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	board := mountedBoard(t, backend, makeQuizzes(2, sameCourse("c1")), testMetrics(t), nil)

	board.Close()
	board.Close()

	assert.True(t, board.Closed())
	require.ErrorIs(t, board.SetFilter("c1"), ErrBoardClosed)
	require.ErrorIs(t, board.NextPage(), ErrBoardClosed)
	require.ErrorIs(t, board.OpenAdd(), ErrBoardClosed)

	_, err := board.Create(context.Background(), domain.NewQuiz("", "c1", nil))
	require.ErrorIs(t, err, ErrBoardClosed)

	_, err = board.Delete(context.Background(), "q1", ports.Confirmed(true))
	require.ErrorIs(t, err, ErrBoardClosed)

	require.ErrorIs(t, board.ReloadQuizzes(context.Background()), ErrBoardClosed)
}
