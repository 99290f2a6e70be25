package domain

import "net/url"

// QuestionsPath is the full-page target of "view details" for a quiz.
func QuestionsPath(quizID string) string {
	return "/quizzes/questions/" + url.PathEscape(quizID)
}

// AllQuestionsPath is the full-page target of "add questions" for a quiz.
func AllQuestionsPath(quizID string) string {
	return "/quizzes/all-questions/" + url.PathEscape(quizID)
}
