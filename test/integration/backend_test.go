//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// fakeBackend is an in-memory quiz backend speaking the REST contract.
type fakeBackend struct {
	mu         sync.Mutex
	quizzes    []map[string]any
	courses    []map[string]any
	nextID     int
	failCreate int
	requests   map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{requests: make(map[string]int)}
}

func (b *fakeBackend) seed(course string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.courses = append(b.courses, map[string]any{"coursequizID": course, "courseName": "Course " + course})

	for range n {
		b.nextID++
		b.quizzes = append(b.quizzes, map[string]any{
			"id":           fmt.Sprintf("q%d", b.nextID),
			"coursequizID": course,
			"title":        fmt.Sprintf("Quiz %d", b.nextID),
			"rubric":       map[string]any{"max": 10},
		})
	}
}

func (b *fakeBackend) count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.requests[method]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests[r.Method]++

	id, hasID := strings.CutPrefix(r.URL.Path, "/quizzes/")

	switch {
	case r.URL.Path == "/courses" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.courses)

	case r.URL.Path == "/quizzes" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, b.quizzes)

	case r.URL.Path == "/quizzes" && r.Method == http.MethodPost:
		if b.failCreate != 0 {
			writeJSON(w, b.failCreate, map[string]any{"message": "create rejected"})
			return
		}

		quiz, ok := decodeQuiz(w, r)
		if !ok {
			return
		}

		b.nextID++
		quiz["id"] = fmt.Sprintf("q%d", b.nextID)
		b.quizzes = append(b.quizzes, quiz)
		writeJSON(w, http.StatusCreated, quiz)

	case hasID && r.Method == http.MethodPut:
		quiz, ok := decodeQuiz(w, r)
		if !ok {
			return
		}

		idx := b.index(id)
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such quiz"})
			return
		}

		b.quizzes[idx] = quiz
		writeJSON(w, http.StatusOK, quiz)

	case hasID && r.Method == http.MethodDelete:
		idx := b.index(id)
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "no such quiz"})
			return
		}

		b.quizzes = append(b.quizzes[:idx], b.quizzes[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) index(id string) int {
	for i, q := range b.quizzes {
		if fmt.Sprint(q["id"]) == id {
			return i
		}
	}

	return -1
}

func decodeQuiz(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var quiz map[string]any
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return nil, false
	}

	return quiz, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
