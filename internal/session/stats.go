package session

import "github.com/abhisek/capitals/internal/store"

// Stats aggregates a quiz history.
type Stats struct {
	Quizzes      int     `json:"quizzes"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	BestScore    int     `json:"best_score"`
	PerfectCount int     `json:"perfect_count"`
}

// Summarize computes Stats over completed quizzes. Incomplete entries are
// ignored.
func Summarize(history []store.QuizSession) Stats {
	var st Stats
	for _, q := range history {
		if !q.IsComplete() {
			continue
		}
		st.Quizzes++
		st.TotalScore += q.Score
		if q.Score > st.BestScore {
			st.BestScore = q.Score
		}
		if q.Score == store.QuestionsPerQuiz {
			st.PerfectCount++
		}
	}
	if st.Quizzes > 0 {
		st.AverageScore = float64(st.TotalScore) / float64(st.Quizzes)
	}
	return st
}
