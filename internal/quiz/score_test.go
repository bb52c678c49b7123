package quiz

import (
	"testing"

	"github.com/abhisek/capitals/internal/store"
)

func TestRecordAnswer_Correct(t *testing.T) {
	session := &store.QuizSession{}
	q := testGenerator().BuildQuestion(georgia())

	if !RecordAnswer(session, q, "Atlanta") {
		t.Error("expected Atlanta to be correct")
	}
	if session.Score != 1 {
		t.Errorf("Score = %d, want 1", session.Score)
	}
	if session.QuestionsAnswered != 1 {
		t.Errorf("QuestionsAnswered = %d, want 1", session.QuestionsAnswered)
	}
}

func TestRecordAnswer_Incorrect(t *testing.T) {
	session := &store.QuizSession{}
	q := testGenerator().BuildQuestion(georgia())

	if RecordAnswer(session, q, "Augusta") {
		t.Error("expected Augusta to be incorrect")
	}
	if session.Score != 0 {
		t.Errorf("Score = %d, want 0", session.Score)
	}
	if session.QuestionsAnswered != 1 {
		t.Errorf("QuestionsAnswered = %d, want 1", session.QuestionsAnswered)
	}
}

func TestRecordAnswer_EmptyNeverCorrect(t *testing.T) {
	session := &store.QuizSession{}
	q := Question{State: store.StateRecord{StateName: "Blank", CapitalCity: ""}}

	if RecordAnswer(session, q, "") {
		t.Error("empty answer must never be correct")
	}
	if session.QuestionsAnswered != 1 {
		t.Errorf("QuestionsAnswered = %d, want 1", session.QuestionsAnswered)
	}
}

func TestRecordAnswer_ExactMatchOnly(t *testing.T) {
	q := testGenerator().BuildQuestion(georgia())

	for _, answer := range []string{"atlanta", "Atlanta ", " Atlanta"} {
		session := &store.QuizSession{}
		if RecordAnswer(session, q, answer) {
			t.Errorf("%q should not match Atlanta", answer)
		}
	}
}

func TestFinalScore_FourOfSix(t *testing.T) {
	g := testGenerator()
	session, questions, err := g.BuildSession(testCatalog(6))
	if err != nil {
		t.Fatalf("build session: %v", err)
	}

	for i, q := range questions {
		answer := q.CorrectAnswer()
		if i >= 4 {
			answer = q.State.City2
		}
		RecordAnswer(session, q, answer)
	}

	if got := FinalScore(session); got != 4 {
		t.Errorf("FinalScore = %d, want 4", got)
	}
	if session.QuestionsAnswered != 6 {
		t.Errorf("QuestionsAnswered = %d, want 6", session.QuestionsAnswered)
	}
}

func TestFinalScore_Idempotent(t *testing.T) {
	session := &store.QuizSession{}
	if got := FinalScore(session); got != 0 {
		t.Errorf("FinalScore before answers = %d, want 0", got)
	}

	RecordAnswer(session, testGenerator().BuildQuestion(georgia()), "Atlanta")
	first := FinalScore(session)
	second := FinalScore(session)
	if first != second || first != 1 {
		t.Errorf("FinalScore = %d then %d, want 1 both times", first, second)
	}
}

func TestFinalScore_NilSession(t *testing.T) {
	if got := FinalScore(nil); got != 0 {
		t.Errorf("FinalScore(nil) = %d, want 0", got)
	}
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{6, "Perfect!"},
		{5, "Great job!"},
		{4, "Great job!"},
		{3, "Good effort!"},
		{2, "Good effort!"},
		{1, "Keep trying!"},
		{0, "Keep trying!"},
	}
	for _, tt := range tests {
		if got := ResultMessage(tt.score); got != tt.want {
			t.Errorf("ResultMessage(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
