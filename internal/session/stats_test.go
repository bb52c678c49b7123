package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/capitals/internal/store"
)

func TestSummarize(t *testing.T) {
	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	history := []store.QuizSession{
		{ID: 1, Score: 6, QuestionsAnswered: 6, CompletedAt: &done},
		{ID: 2, Score: 3, QuestionsAnswered: 6, CompletedAt: &done},
		{ID: 3, Score: 6, QuestionsAnswered: 6, CompletedAt: &done},
		{ID: 4, Score: 2, QuestionsAnswered: 2},
	}

	got := Summarize(history)
	assert.Equal(t, Stats{
		Quizzes:      3,
		TotalScore:   15,
		AverageScore: 5,
		BestScore:    6,
		PerfectCount: 2,
	}, got)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		PhaseUninitialized: "uninitialized",
		PhaseLoading:       "loading",
		PhaseReady:         "ready",
		PhaseInProgress:    "in_progress",
		PhaseCompleted:     "completed",
		Phase(99):          "unknown",
	}
	for p, want := range tests {
		assert.Equal(t, want, p.String())
	}
}
