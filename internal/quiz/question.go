package quiz

import (
	"fmt"

	"github.com/abhisek/capitals/internal/store"
)

// ChoicesPerQuestion is the number of answer choices offered per question.
const ChoicesPerQuestion = 3

// Question is a multiple-choice prompt for one state. Choices is a
// permutation of the state's capital and its two distractor cities.
type Question struct {
	State        store.StateRecord          `json:"state"`
	Choices      [ChoicesPerQuestion]string `json:"choices"`
	CorrectIndex int                        `json:"-"`
}

// Text returns the prompt shown to the user.
func (q Question) Text() string {
	return fmt.Sprintf("What is the capital of %s?", q.State.StateName)
}

// CorrectAnswer returns the state's capital.
func (q Question) CorrectAnswer() string {
	return q.State.CapitalCity
}

// IsCorrect reports whether answer is exactly the capital. An empty answer is
// never correct.
func (q Question) IsCorrect(answer string) bool {
	return answer != "" && answer == q.State.CapitalCity
}

// Choice returns the answer text for a 1-based choice number.
func (q Question) Choice(n int) (string, bool) {
	if n < 1 || n > ChoicesPerQuestion {
		return "", false
	}
	return q.Choices[n-1], true
}

// ChoiceNumber returns the 1-based choice number whose text equals answer,
// or 0 if none does.
func (q Question) ChoiceNumber(answer string) int {
	for i, c := range q.Choices {
		if c == answer {
			return i + 1
		}
	}
	return 0
}
