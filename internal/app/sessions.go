package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quizboard/internal/domain"
	"github.com/jsamuelsen/quizboard/internal/ports"
)

// Default session settings.
const (
	DefaultSessionTTL      = 30 * time.Minute
	DefaultJanitorInterval = time.Minute
)

// SessionsConfig contains the dependencies and limits of a session registry.
type SessionsConfig struct {
	Backend         ports.QuizBackend
	Identity        ports.IdentityProvider
	Metrics         *Metrics
	Logger          *slog.Logger
	TTL             time.Duration
	JanitorInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

type session struct {
	board    *Board
	lastSeen time.Time
}

// Sessions maps opaque session ids to mounted boards and evicts idle ones.
type Sessions struct {
	backend  ports.QuizBackend
	identity ports.IdentityProvider
	metrics  *Metrics
	logger   *slog.Logger
	exec     *Executor
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	boards map[string]*session
	closed bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSessions creates a session registry. Call Start to run the janitor.
func NewSessions(cfg SessionsConfig) *Sessions {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	interval := cfg.JanitorInterval
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Sessions{
		backend:  cfg.Backend,
		identity: cfg.Identity,
		metrics:  cfg.Metrics,
		logger:   logger.With(slog.String("component", "app.Sessions")),
		exec:     NewExecutor(logger),
		ttl:      ttl,
		interval: interval,
		now:      now,
		boards:   make(map[string]*session),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Open resolves the caller's identity, mounts a new board and registers it.
// Load failures during mount are logged by the board and do not fail Open.
func (s *Sessions) Open(ctx context.Context) (*Board, error) {
	identity := domain.Anonymous()

	if s.identity != nil {
		resolved, err := s.identity.Identity(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving identity: %w", err)
		}

		if resolved != nil {
			identity = resolved
		}
	}

	board := NewBoard(BoardConfig{
		ID:       uuid.NewString(),
		Backend:  s.backend,
		Identity: identity,
		Executor: s.exec,
		Metrics:  s.metrics,
		Logger:   s.logger,
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		board.Close()

		return nil, ErrBoardClosed
	}

	s.boards[board.ID()] = &session{board: board, lastSeen: s.now()}
	s.mu.Unlock()

	s.metrics.boardOpened()

	s.logger.InfoContext(ctx, "board opened",
		slog.String("board_id", board.ID()),
		slog.String("subject", identity.Subject),
	)

	_ = board.Mount(ctx)

	return board, nil
}

// Get returns the board for id and refreshes its idle deadline.
func (s *Sessions) Get(id string) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.boards[id]
	if !ok || s.expired(sess) {
		return nil, domain.NewNotFoundError("board", id)
	}

	sess.lastSeen = s.now()

	return sess.board, nil
}

// Close closes the board for id and forgets it.
func (s *Sessions) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.boards[id]
	delete(s.boards, id)
	s.mu.Unlock()

	if !ok {
		return domain.NewNotFoundError("board", id)
	}

	s.closeBoard(sess.board, "closed")

	return nil
}

// Len returns the number of registered boards.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.boards)
}

// Evict closes every board idle for longer than the TTL and returns how many.
func (s *Sessions) Evict() int {
	s.mu.Lock()

	var stale []*Board

	for id, sess := range s.boards {
		if s.expired(sess) {
			stale = append(stale, sess.board)
			delete(s.boards, id)
		}
	}
	s.mu.Unlock()

	for _, b := range stale {
		s.closeBoard(b, "expired")
	}

	return len(stale)
}

// Start runs the janitor until ctx is done or Shutdown is called.
func (s *Sessions) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if n := s.Evict(); n > 0 {
					s.logger.Debug("evicted idle boards", slog.Int("count", n))
				}
			}
		}
	}()
}

// Shutdown stops the janitor and closes every board.
// New sessions are refused afterwards.
func (s *Sessions) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	s.closed = true
	boards := s.boards
	s.boards = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range boards {
		s.closeBoard(sess.board, "shutdown")
	}

	s.logger.InfoContext(ctx, "board sessions shut down", slog.Int("closed", len(boards)))

	return nil
}

// Wait blocks until a started janitor has exited or ctx is done.
func (s *Sessions) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sessions) expired(sess *session) bool {
	return s.now().Sub(sess.lastSeen) > s.ttl
}

func (s *Sessions) closeBoard(b *Board, reason string) {
	b.Close()
	s.metrics.boardClosed()
	s.logger.Info("board closed",
		slog.String("board_id", b.ID()),
		slog.String("reason", reason),
	)
}
