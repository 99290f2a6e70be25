package domain

import (
	"bytes"
	"encoding/json"
	"maps"
)

// Wire keys owned by the quiz board. Every other key is passthrough.
const (
	keyID       = "id"
	keyCourseID = "coursequizID"
	keyName     = "courseName"
)

// Quiz is a gradable assessment owned by the backend.
//
// Only the identifier and the course association are interpreted. Every other
// field received from the backend is retained verbatim and sent back unchanged.
// The original JSON form of the identifier (string or number) is kept so that
// re-encoding a quiz does not change its type on the wire.
type Quiz struct {
	ID       string
	CourseID string

	fields    map[string]json.RawMessage
	idRaw     json.RawMessage
	courseRaw json.RawMessage
}

// NewQuiz builds a quiz from form values. ID may be empty for a quiz not yet created.
func NewQuiz(id, courseID string, fields map[string]string) Quiz {
	q := Quiz{ID: id, CourseID: courseID}
	for k, v := range fields {
		q.SetField(k, v)
	}

	return q
}

// Field returns a passthrough field as display text.
// Strings are unquoted; other JSON values are returned as their literal text.
func (q Quiz) Field(key string) string {
	raw, ok := q.fields[key]
	if !ok {
		return ""
	}

	return scalarText(raw)
}

// HasField reports whether the passthrough field is present.
func (q Quiz) HasField(key string) bool {
	_, ok := q.fields[key]
	return ok
}

// SetField stores a passthrough field as a JSON string.
// Setting id or coursequizID through this method updates the typed fields instead.
func (q *Quiz) SetField(key, value string) {
	switch key {
	case keyID:
		q.ID = value
		return
	case keyCourseID:
		q.CourseID = value
		return
	}

	if q.fields == nil {
		q.fields = make(map[string]json.RawMessage)
	}

	encoded, _ := json.Marshal(value)
	q.fields[key] = encoded
}

// Title is the quiz title shown on cards.
func (q Quiz) Title() string {
	return q.Field("title")
}

// Description is the quiz description shown on cards.
func (q Quiz) Description() string {
	return q.Field("description")
}

// Clone returns a deep copy safe to hold across state changes.
func (q Quiz) Clone() Quiz {
	out := Quiz{
		ID:        q.ID,
		CourseID:  q.CourseID,
		idRaw:     bytes.Clone(q.idRaw),
		courseRaw: bytes.Clone(q.courseRaw),
	}

	if q.fields != nil {
		out.fields = make(map[string]json.RawMessage, len(q.fields))
		for k, v := range q.fields {
			out.fields[k] = bytes.Clone(v)
		}
	}

	return out
}

// Merge applies edited values onto q and returns the result.
// Passthrough fields of q that the edit does not mention are kept.
func (q Quiz) Merge(edit Quiz) Quiz {
	out := q.Clone()
	if edit.ID != "" {
		out.ID = edit.ID
	}

	out.CourseID = edit.CourseID

	for k, v := range edit.fields {
		if out.fields == nil {
			out.fields = make(map[string]json.RawMessage)
		}

		out.fields[k] = bytes.Clone(v)
	}

	return out
}

// MarshalJSON encodes the quiz with all passthrough fields.
func (q Quiz) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(q.fields)+2)
	maps.Copy(out, q.fields)

	if raw := encodeFlexID(q.ID, q.idRaw); raw != nil {
		out[keyID] = raw
	}

	if raw := encodeFlexID(q.CourseID, q.courseRaw); raw != nil {
		out[keyCourseID] = raw
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes a backend quiz object.
func (q *Quiz) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*q = Quiz{}

	if raw, ok := fields[keyID]; ok {
		q.ID = scalarID(raw)
		if q.ID != "" {
			q.idRaw = raw
		}

		delete(fields, keyID)
	}

	if raw, ok := fields[keyCourseID]; ok {
		q.CourseID = scalarID(raw)
		if q.CourseID != "" {
			q.courseRaw = raw
		}

		delete(fields, keyCourseID)
	}

	if len(fields) > 0 {
		q.fields = fields
	}

	return nil
}

// Course is an organizational grouping used to filter and tag quizzes.
type Course struct {
	ID   string
	Name string

	idRaw json.RawMessage
}

// NewCourse builds a course value.
func NewCourse(id, name string) Course {
	return Course{ID: id, Name: name}
}

// MarshalJSON encodes the course using backend wire keys.
func (c Course) MarshalJSON() ([]byte, error) {
	out := map[string]json.RawMessage{}
	if raw := encodeFlexID(c.ID, c.idRaw); raw != nil {
		out[keyCourseID] = raw
	}

	name, err := json.Marshal(c.Name)
	if err != nil {
		return nil, err
	}

	out[keyName] = name

	return json.Marshal(out)
}

// UnmarshalJSON decodes a backend course object.
func (c *Course) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID   json.RawMessage `json:"coursequizID"`
		Name json.RawMessage `json:"courseName"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*c = Course{ID: scalarID(aux.ID), Name: scalarText(aux.Name)}
	if c.ID != "" {
		c.idRaw = aux.ID
	}

	return nil
}

// scalarID returns the string form of a JSON string or number.
// Anything else, null included, yields "".
func scalarID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}

		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return ""
		}

		return n.String()
	default:
		return ""
	}
}

func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return string(raw)
}

// encodeFlexID reuses the original wire form while the value is unchanged.
func encodeFlexID(value string, original json.RawMessage) json.RawMessage {
	if value == "" {
		return nil
	}

	if original != nil && scalarID(original) == value {
		return original
	}

	encoded, _ := json.Marshal(value)

	return encoded
}
