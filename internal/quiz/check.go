package quiz

import (
	"errors"
	"fmt"

	"studyquiz/internal/apierr"
	"studyquiz/internal/models"
)

// ErrInvalidIndex is returned when a question index does not address an item.
var ErrInvalidIndex = errors.New("invalid questionIndex")

// NoSelection is the selected index used when the client sent none. It never
// matches an answer.
const NoSelection = -1

// Check compares a selection against the stored answer of one question. The
// quiz supplied by the client is the only source of truth; the stored index,
// letter and explanation are echoed as-is.
func Check(items []models.QuizItem, questionIndex, selectedIndex int) (models.AnswerCheckResponse, error) {
	if questionIndex < 0 || questionIndex >= len(items) {
		return models.AnswerCheckResponse{}, apierr.Lookup("check",
			fmt.Errorf("%w: %d (quiz has %d questions)", ErrInvalidIndex, questionIndex, len(items)))
	}
	item := items[questionIndex]
	letter := item.AnswerLetter
	if letter == "" {
		letter = "A"
	}
	return models.AnswerCheckResponse{
		Correct:       selectedIndex == item.AnswerIndex,
		CorrectIndex:  item.AnswerIndex,
		CorrectLetter: letter,
		Explanation:   item.Explanation,
	}, nil
}

// CheckRequest coerces the loosely typed indexes of req and runs Check. A
// question index that is missing or not numeric is an invalid index; a
// selection that is missing or not numeric is never correct.
func CheckRequest(req models.AnswerCheckRequest) (models.AnswerCheckResponse, error) {
	questionIndex, ok := toInt(req.QuestionIndex)
	if !ok {
		return models.AnswerCheckResponse{}, apierr.Lookup("check",
			fmt.Errorf("%w: %v", ErrInvalidIndex, req.QuestionIndex))
	}
	selectedIndex, ok := toInt(req.SelectedIndex)
	if !ok {
		selectedIndex = NoSelection
	}
	return Check(req.Quiz, questionIndex, selectedIndex)
}
