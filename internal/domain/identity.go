package domain

// AnonymousSubject is the subject of the identity used when auth is disabled.
const AnonymousSubject = "anonymous"

// Identity describes the teacher using a board.
// It is resolved once when a board is mounted and is not used for authorization.
type Identity struct {
	Subject string   `json:"subject"`
	Name    string   `json:"name,omitempty"`
	Roles   []string `json:"roles,omitempty"`
}

// Anonymous returns the identity used when no provider resolves a user.
func Anonymous() *Identity {
	return &Identity{Subject: AnonymousSubject}
}

// DisplayName returns the name, falling back to the subject.
func (i *Identity) DisplayName() string {
	if i == nil {
		return AnonymousSubject
	}

	if i.Name != "" {
		return i.Name
	}

	return i.Subject
}
