package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// SaveSelection records the answer chosen for one question of a quiz,
// replacing any earlier choice for the same question.
func (s *Store) SaveSelection(ctx context.Context, quizID, questionNumber int, answer string) error {
	if questionNumber < 1 || questionNumber > QuestionsPerQuiz {
		return &InvalidArgumentError{
			Op:     "save selection",
			Reason: fmt.Sprintf("question number %d out of range 1..%d", questionNumber, QuestionsPerQuiz),
		}
	}

	query, args := s.builder().Insert(tableSelections).
		Columns(colQuizID, colQuestionNumber, colAnswer).
		Values(quizID, questionNumber, answer).
		OnConflict(
			entsql.ConflictColumns(colQuizID, colQuestionNumber),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("save selection", err)
	}
	return nil
}

// ClearSelection removes the recorded answer for one question, if any.
func (s *Store) ClearSelection(ctx context.Context, quizID, questionNumber int) error {
	query, args := s.builder().Delete(tableSelections).
		Where(entsql.And(
			entsql.EQ(colQuizID, quizID),
			entsql.EQ(colQuestionNumber, questionNumber),
		)).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("clear selection", err)
	}
	return nil
}

// Selections returns the recorded answers of a quiz keyed by question number.
func (s *Store) Selections(ctx context.Context, quizID int) (map[int]string, error) {
	b := s.builder()
	query, args := b.Select(colQuestionNumber, colAnswer).
		From(b.Table(tableSelections)).
		Where(entsql.EQ(colQuizID, quizID)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query selections", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var (
			n      int
			answer string
		)
		if err := rows.Scan(&n, &answer); err != nil {
			return nil, persistErr("scan selection", err)
		}
		out[n] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query selections", err)
	}
	return out, nil
}
