// Package acl is the anti-corruption layer between the quiz board and the
// quiz REST backend.
//
// [QuizBackend] speaks the backend's REST contract:
//
//	GET    /quizzes        list quizzes
//	GET    /courses        list courses
//	POST   /quizzes        create, returns the stored quiz
//	PUT    /quizzes/{id}   update, returns the stored quiz
//	DELETE /quizzes/{id}   delete, any 2xx
//
// Quiz bodies are decoded into [domain.Quiz], which keeps every field it does
// not interpret so an edit sends back what the backend sent.
//
// Every failure leaves this package as a domain error:
//   - 404 → [domain.ErrNotFound]
//   - 409 → [domain.ErrConflict]
//   - 400/422 and other 4xx → [domain.ErrValidation]
//   - 401/403 → [domain.ErrForbidden]
//   - 5xx, 429, transport errors, open circuit, undecodable bodies → [domain.ErrUnavailable]
//
// Caller cancellation is passed through unmapped so context.Canceled stays
// visible to errors.Is.
package acl
