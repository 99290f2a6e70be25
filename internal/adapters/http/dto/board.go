package dto

import (
	"github.com/jsamuelsen/quizboard/internal/app"
	"github.com/jsamuelsen/quizboard/internal/domain"
)

// Quiz form and JSON keys owned by QuizRequest.
const (
	fieldCourseID    = "coursequizID"
	fieldTitle       = "title"
	fieldDescription = "description"
)

// QuizRequest is a create or update submitted by the page form or the JSON API.
// Fields carries extra backend fields; it cannot be posted from the HTML form.
type QuizRequest struct {
	CourseID    string            `json:"coursequizID" form:"coursequizID" validate:"required,notempty,max=64"`
	Title       string            `json:"title" form:"title" validate:"required,notempty,max=200"`
	Description string            `json:"description" form:"description" validate:"max=2000"`
	Fields      map[string]string `json:"fields,omitempty" form:"-" validate:"max=32,dive,keys,required,max=64,endkeys,max=2000"`
}

// Validate rejects extra fields that shadow the named ones.
func (r *QuizRequest) Validate() error {
	for key := range r.Fields {
		switch key {
		case "id", fieldCourseID, fieldTitle, fieldDescription:
			return &FieldError{Field: "fields." + key, Message: "is set by its own field"}
		}
	}

	return nil
}

// ToQuiz builds the domain quiz. id is empty for a create.
func (r *QuizRequest) ToQuiz(id string) domain.Quiz {
	fields := make(map[string]string, len(r.Fields)+2)
	for k, v := range r.Fields {
		fields[k] = v
	}

	fields[fieldTitle] = r.Title
	fields[fieldDescription] = r.Description

	return domain.NewQuiz(id, r.CourseID, fields)
}

// BoardURI addresses a board session.
type BoardURI struct {
	SessionID string `uri:"sid" validate:"required,uuid"`
}

// QuizURI addresses a quiz on a board.
type QuizURI struct {
	SessionID string `uri:"sid" validate:"required,uuid"`
	QuizID    string `uri:"id"  validate:"required,max=128"`
}

// FilterRequest selects a course. An empty course means all courses.
type FilterRequest struct {
	CourseID string `json:"coursequizID" form:"coursequizID" validate:"max=64"`
}

// PageRequest moves to an explicit page.
type PageRequest struct {
	Page int `json:"page" form:"page" validate:"gte=1"`
}

// DeleteRequest carries the answer to the delete confirmation.
type DeleteRequest struct {
	Confirmed bool `json:"confirmed" form:"confirmed"`
}

// PageResponse is the pagination cursor.
type PageResponse struct {
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	TotalItems int  `json:"totalItems"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
}

// ModalResponse is the form overlay state. Quiz is set while editing.
type ModalResponse struct {
	State string       `json:"state"`
	Quiz  *domain.Quiz `json:"quiz,omitempty"`
}

// BoardResponse is a board snapshot.
type BoardResponse struct {
	ID       string           `json:"id"`
	Identity *domain.Identity `json:"identity,omitempty"`
	Quizzes  []domain.Quiz    `json:"quizzes"`
	Courses  []domain.Course  `json:"courses"`
	Filter   string           `json:"filter"`
	Page     PageResponse     `json:"page"`
	Modal    ModalResponse    `json:"modal"`
}

// NewBoardResponse converts a view snapshot.
func NewBoardResponse(v app.View) BoardResponse {
	quizzes := v.Quizzes
	if quizzes == nil {
		quizzes = []domain.Quiz{}
	}

	courses := v.Courses
	if courses == nil {
		courses = []domain.Course{}
	}

	return BoardResponse{
		ID:       v.ID,
		Identity: v.Identity,
		Quizzes:  quizzes,
		Courses:  courses,
		Filter:   v.Filter,
		Page: PageResponse{
			Page:       v.Page.Page,
			TotalPages: v.Page.TotalPages,
			TotalItems: v.Page.TotalItems,
			HasPrev:    v.Page.HasPrev,
			HasNext:    v.Page.HasNext,
		},
		Modal: ModalResponse{
			State: v.Modal.String(),
			Quiz:  v.Editing,
		},
	}
}

// QuizResultResponse answers a create or update.
type QuizResultResponse struct {
	Quiz  domain.Quiz   `json:"quiz"`
	Board BoardResponse `json:"board"`
}

// DeleteResultResponse answers a delete. Deleted is false when the
// confirmation was declined.
type DeleteResultResponse struct {
	Deleted bool          `json:"deleted"`
	Board   BoardResponse `json:"board"`
}
