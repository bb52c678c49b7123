package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var quizColumns = append([]string{
	colID,
	colCompletedAt,
	colScore,
	colQuestionsAnswered,
}, stateSlotColumns[:]...)

// CreateSession stores a new in-progress quiz over exactly six state ids and
// returns its id. Score and progress start at zero.
func (s *Store) CreateSession(ctx context.Context, stateIDs []int) (int, error) {
	if len(stateIDs) != QuestionsPerQuiz {
		return 0, &InvalidArgumentError{
			Op:     "create session",
			Reason: fmt.Sprintf("need exactly %d state ids, got %d", QuestionsPerQuiz, len(stateIDs)),
		}
	}

	cols := append([]string{colScore, colQuestionsAnswered}, stateSlotColumns[:]...)
	vals := []any{0, 0}
	for _, id := range stateIDs {
		vals = append(vals, id)
	}

	ib := s.builder().Insert(tableQuizzes).Columns(cols...).Values(vals...)
	id, err := s.insertReturningID(ctx, ib)
	if err != nil {
		return 0, persistErr("create session", err)
	}
	return id, nil
}

// UpdateSessionProgress overwrites the score and answered count of a quiz.
// Callers are responsible for keeping both monotonic.
func (s *Store) UpdateSessionProgress(ctx context.Context, id, score, questionsAnswered int) error {
	query, args := s.builder().Update(tableQuizzes).
		Set(colScore, score).
		Set(colQuestionsAnswered, questionsAnswered).
		Where(entsql.EQ(colID, id)).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("update session progress", err)
	}
	return nil
}

// CompleteSession finalizes a quiz: all questions answered, final score and
// completion time recorded.
func (s *Store) CompleteSession(ctx context.Context, id, finalScore int, completedAt time.Time) error {
	query, args := s.builder().Update(tableQuizzes).
		Set(colScore, finalScore).
		Set(colQuestionsAnswered, QuestionsPerQuiz).
		Set(colCompletedAt, completedAt.UTC()).
		Where(entsql.EQ(colID, id)).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return persistErr("complete session", err)
	}
	return nil
}

// SessionByID returns the quiz with the given id, or nil if none exists.
func (s *Store) SessionByID(ctx context.Context, id int) (*QuizSession, error) {
	b := s.builder()
	query, args := b.Select(quizColumns...).
		From(b.Table(tableQuizzes)).
		Where(entsql.EQ(colID, id)).
		Query()

	q, err := scanQuiz(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("query session", err)
	}
	return q, nil
}

// CompletedSessions returns finalized quizzes, most recently completed first.
func (s *Store) CompletedSessions(ctx context.Context) ([]QuizSession, error) {
	b := s.builder()
	query, args := b.Select(quizColumns...).
		From(b.Table(tableQuizzes)).
		Where(entsql.NotNull(colCompletedAt)).
		OrderBy(entsql.Desc(colCompletedAt), entsql.Desc(colID)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query completed sessions", err)
	}
	defer rows.Close()

	var quizzes []QuizSession
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, persistErr("scan session", err)
		}
		quizzes = append(quizzes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query completed sessions", err)
	}
	return quizzes, nil
}

// MostRecentIncompleteSession returns the highest-id quiz that has not been
// completed, or nil if there is none.
func (s *Store) MostRecentIncompleteSession(ctx context.Context) (*QuizSession, error) {
	b := s.builder()
	query, args := b.Select(quizColumns...).
		From(b.Table(tableQuizzes)).
		Where(entsql.IsNull(colCompletedAt)).
		OrderBy(entsql.Desc(colID)).
		Limit(1).
		Query()

	q, err := scanQuiz(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("query incomplete session", err)
	}
	return q, nil
}

func scanQuiz(r rowScanner) (*QuizSession, error) {
	var (
		q           QuizSession
		completedAt sql.NullTime
	)
	dest := []any{&q.ID, &completedAt, &q.Score, &q.QuestionsAnswered}
	for i := range q.StateIDs {
		dest = append(dest, &q.StateIDs[i])
	}
	if err := r.Scan(dest...); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		q.CompletedAt = &t
	}
	return &q, nil
}

// insertReturningID executes ib and returns the generated primary key.
func (s *Store) insertReturningID(ctx context.Context, ib *entsql.InsertBuilder) (int, error) {
	if s.dialect == dialect.Postgres {
		query, args := ib.Returning(colID).Query()
		var id int
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args := ib.Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}
