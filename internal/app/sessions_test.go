package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/mocks"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func expectMount(backend *mocks.MockQuizBackend) {
	backend.EXPECT().ListQuizzes(mock.Anything).Return(makeQuizzes(3, sameCourse("c1")), nil)
	backend.EXPECT().ListCourses(mock.Anything).Return(testCourses(), nil)
}

func newTestSessions(t *testing.T, backend *mocks.MockQuizBackend, clock *fakeClock) (*Sessions, *Metrics) {
	t.Helper()

	m := testMetrics(t)
	identity := mocks.NewMockIdentityProvider(t)
	identity.EXPECT().Identity(mock.Anything).
		Return(&domain.Identity{Subject: "t-1", Name: "Ms. Rivera", Roles: []string{"teacher"}}, nil).
		Maybe()

	sessions := NewSessions(SessionsConfig{
		Backend:  backend,
		Identity: identity,
		Metrics:  m,
		Logger:   discardLogger(),
		TTL:      10 * time.Minute,
		Now:      clock.Now,
	})

	return sessions, m
}

func TestSessions_OpenAndGet(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	expectMount(backend)

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	sessions, m := newTestSessions(t, backend, clock)

	board, err := sessions.Open(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, board.ID())

	assert.Equal(t, "Ms. Rivera", board.Identity().DisplayName())
	assert.Len(t, board.Quizzes(), 3, "board is mounted on open")
	assert.Equal(t, 1, sessions.Len())
	assert.InDelta(t, 1, testutil.ToFloat64(m.boardsOpen), 0)

	got, err := sessions.Get(board.ID())
	require.NoError(t, err)
	assert.Same(t, board, got)
}

func TestSessions_Open_MountFailureStillOpens(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().ListQuizzes(mock.Anything).Return(nil, domain.NewUnavailableError("quiz-backend", "down"))
	backend.EXPECT().ListCourses(mock.Anything).Return(nil, domain.NewUnavailableError("quiz-backend", "down"))

	sessions, _ := newTestSessions(t, backend, &fakeClock{now: time.Now()})

	board, err := sessions.Open(context.Background())
	require.NoError(t, err)
	assert.Empty(t, board.Quizzes())
}

func TestSessions_Open_IdentityFailure(t *testing.T) {
	identity := mocks.NewMockIdentityProvider(t)
	identity.EXPECT().Identity(mock.Anything).Return(nil, domain.NewForbiddenError("open board", "token expired"))

	sessions := NewSessions(SessionsConfig{
		Backend:  mocks.NewMockQuizBackend(t),
		Identity: identity,
		Logger:   discardLogger(),
	})

	_, err := sessions.Open(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
	assert.Zero(t, sessions.Len())
}

func TestSessions_Open_WithoutProviderIsAnonymous(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	expectMount(backend)

	sessions := NewSessions(SessionsConfig{Backend: backend, Logger: discardLogger()})

	board, err := sessions.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousSubject, board.Identity().Subject)
}

func TestSessions_GetUnknown(t *testing.T) {
	sessions, _ := newTestSessions(t, mocks.NewMockQuizBackend(t), &fakeClock{now: time.Now()})

	_, err := sessions.Get("nope")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSessions_Close(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	expectMount(backend)

	sessions, m := newTestSessions(t, backend, &fakeClock{now: time.Now()})

	board, err := sessions.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, sessions.Close(board.ID()))
	assert.True(t, board.Closed())
	assert.Zero(t, sessions.Len())
	assert.InDelta(t, 0, testutil.ToFloat64(m.boardsOpen), 0)

	err = sessions.Close(board.ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestSessions_EvictsIdleBoards(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	expectMount(backend)

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	sessions, _ := newTestSessions(t, backend, clock)

	stale, err := sessions.Open(context.Background())
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)

	fresh, err := sessions.Open(context.Background())
	require.NoError(t, err)

	clock.Advance(5 * time.Minute)

	_, err = sessions.Get(stale.ID())
	require.Error(t, err, "expired boards are not returned")

	assert.Equal(t, 1, sessions.Evict())
	assert.True(t, stale.Closed())
	assert.False(t, fresh.Closed())

	_, err = sessions.Get(fresh.ID())
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, err = sessions.Get(fresh.ID())
	require.NoError(t, err, "get refreshes the idle deadline")

	clock.Advance(9 * time.Minute)
	assert.Zero(t, sessions.Evict())
}

func TestSessions_JanitorRunsUntilShutdown(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	backend.EXPECT().ListQuizzes(mock.Anything).Return(nil, nil).Maybe()
	backend.EXPECT().ListCourses(mock.Anything).Return(nil, nil).Maybe()

	sessions := NewSessions(SessionsConfig{
		Backend:         backend,
		Logger:          discardLogger(),
		TTL:             time.Millisecond,
		JanitorInterval: 5 * time.Millisecond,
	})
	sessions.Start(context.Background())

	board, err := sessions.Open(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, board.Closed, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, sessions.Shutdown(ctx))
	require.NoError(t, sessions.Wait(ctx))
}

func TestSessions_Shutdown(t *testing.T) {
	backend := mocks.NewMockQuizBackend(t)
	expectMount(backend)

	sessions, m := newTestSessions(t, backend, &fakeClock{now: time.Now()})

	first, err := sessions.Open(context.Background())
	require.NoError(t, err)

	second, err := sessions.Open(context.Background())
	require.NoError(t, err)

	require.NoError(t, sessions.Shutdown(context.Background()))
	require.NoError(t, sessions.Shutdown(context.Background()))

	assert.True(t, first.Closed())
	assert.True(t, second.Closed())
	assert.Zero(t, sessions.Len())
	assert.InDelta(t, 0, testutil.ToFloat64(m.boardsOpen), 0)

	_, err = sessions.Open(context.Background())
	require.ErrorIs(t, err, ErrBoardClosed)
}
