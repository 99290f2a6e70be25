package domain

// ModalKind tags which form overlay is open.
type ModalKind int

const (
	ModalClosed ModalKind = iota
	ModalAdding
	ModalEditing
)

// String returns the lowercase state name used in templates and JSON.
func (k ModalKind) String() string {
	switch k {
	case ModalAdding:
		return "adding"
	case ModalEditing:
		return "editing"
	default:
		return "closed"
	}
}

// Modal is the exclusive add/edit overlay state: closed, adding or editing(quiz).
// The zero value is closed.
type Modal struct {
	kind ModalKind
	quiz Quiz
}

// Kind returns the current state tag.
func (m Modal) Kind() ModalKind {
	return m.kind
}

// IsOpen reports whether any form overlay is shown.
func (m Modal) IsOpen() bool {
	return m.kind != ModalClosed
}

// Editing returns the snapshot being edited, if any.
func (m Modal) Editing() (Quiz, bool) {
	if m.kind != ModalEditing {
		return Quiz{}, false
	}

	return m.quiz.Clone(), true
}

// OpenAdd moves closed -> adding.
func (m Modal) OpenAdd() (Modal, error) {
	if m.kind != ModalClosed {
		return m, NewConflictError("modal", m.kind.String()+" form already open")
	}

	return Modal{kind: ModalAdding}, nil
}

// OpenEdit moves closed -> editing(q), capturing a snapshot of q.
func (m Modal) OpenEdit(q Quiz) (Modal, error) {
	if m.kind != ModalClosed {
		return m, NewConflictError("modal", m.kind.String()+" form already open")
	}

	return Modal{kind: ModalEditing, quiz: q.Clone()}, nil
}

// Close returns the closed state from any state.
func (m Modal) Close() Modal {
	return Modal{}
}

// CloseIf closes m only when it is in state kind.
func (m Modal) CloseIf(kind ModalKind) Modal {
	if m.kind == kind {
		return Modal{}
	}

	return m
}
