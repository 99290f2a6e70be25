package app

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used in logs and metric labels.
const (
	OpReloadQuizzes = "reload_quizzes"
	OpReloadCourses = "reload_courses"
	OpCreateQuiz    = "create_quiz"
	OpUpdateQuiz    = "update_quiz"
	OpDeleteQuiz    = "delete_quiz"
)

// Metrics holds the quiz board prometheus collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	boardsOpen prometheus.Gauge
}

// NewMetrics creates the board collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "operations_total",
			Help:      "Backend operations attempted by quiz boards.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizboard",
			Name:      "operation_failures_total",
			Help:      "Backend operations that failed and left board state unchanged.",
		}, []string{"operation"}),
		boardsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quizboard",
			Name:      "boards_open",
			Help:      "Quiz boards currently mounted.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}

	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}

	if m.boardsOpen, err = register(reg, m.boardsOpen); err != nil {
		return nil, err
	}

	return m, nil
}

// register reuses an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}

	return c, err
}

func (m *Metrics) attempted(op string) {
	if m != nil {
		m.operations.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) failed(op string) {
	if m != nil {
		m.failures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) boardOpened() {
	if m != nil {
		m.boardsOpen.Inc()
	}
}

func (m *Metrics) boardClosed() {
	if m != nil {
		m.boardsOpen.Dec()
	}
}
