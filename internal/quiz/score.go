package quiz

import "github.com/abhisek/capitals/internal/store"

// RecordAnswer scores one answer against q and updates session counters.
// QuestionsAnswered always advances; Score advances only when correct.
// Recording the same question twice counts it twice.
func RecordAnswer(session *store.QuizSession, q Question, answer string) bool {
	correct := q.IsCorrect(answer)
	session.QuestionsAnswered++
	if correct {
		session.Score++
	}
	return correct
}

// FinalScore returns the session's current score.
func FinalScore(session *store.QuizSession) int {
	if session == nil {
		return 0
	}
	return session.Score
}

// ResultMessage returns the encouragement shown with a final score.
func ResultMessage(score int) string {
	switch {
	case score >= store.QuestionsPerQuiz:
		return "Perfect!"
	case score >= 4:
		return "Great job!"
	case score >= 2:
		return "Good effort!"
	default:
		return "Keep trying!"
	}
}
