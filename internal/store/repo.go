package store

import "time"

// QuestionsPerQuiz is the fixed number of states (and questions) in a quiz.
const QuestionsPerQuiz = 6

// StateRecord is one reference entry: a state, its capital, and two
// distractor cities. Records are imported once and never modified.
type StateRecord struct {
	ID          int    `json:"id"`
	StateName   string `json:"state_name"`
	CapitalCity string `json:"capital_city"`
	City2       string `json:"city2"`
	City3       string `json:"city3"`

	// Informational only; nil when the import source left them blank.
	StatehoodYear    *int `json:"statehood_year,omitempty"`
	CapitalSinceYear *int `json:"capital_since_year,omitempty"`
	CapitalRank      *int `json:"capital_rank,omitempty"`
}

// QuizSession is one quiz attempt over six fixed states.
type QuizSession struct {
	ID int `json:"id"`

	// CompletedAt is nil while the quiz is in progress.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Score             int `json:"score"`
	QuestionsAnswered int `json:"questions_answered"`

	// StateIDs are the quiz's states in question order.
	StateIDs [QuestionsPerQuiz]int `json:"state_ids"`
}

// IsComplete reports whether the quiz has been finalized.
func (q *QuizSession) IsComplete() bool {
	return q.CompletedAt != nil
}
