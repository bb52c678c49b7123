package store

import (
	"context"
	"database/sql"
	"math/rand/v2"

	entsql "entgo.io/ent/dialect/sql"
)

var stateColumns = []string{
	colID,
	colStateName,
	colCapitalCity,
	colCity2,
	colCity3,
	colStatehoodYear,
	colCapitalSinceYear,
	colCapitalRank,
}

// IsEmpty reports whether no state records exist.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.CountStates(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// CountStates returns the number of state records.
func (s *Store) CountStates(ctx context.Context) (int, error) {
	b := s.builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(tableStates)).Query()

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, persistErr("count states", err)
	}
	return n, nil
}

// InsertState stores a new state record and returns its assigned id.
func (s *Store) InsertState(ctx context.Context, rec StateRecord) (int, error) {
	ib := s.builder().Insert(tableStates).
		Columns(stateColumns[1:]...).
		Values(
			rec.StateName,
			rec.CapitalCity,
			rec.City2,
			rec.City3,
			nullableInt(rec.StatehoodYear),
			nullableInt(rec.CapitalSinceYear),
			nullableInt(rec.CapitalRank),
		)

	id, err := s.insertReturningID(ctx, ib)
	if err != nil {
		return 0, persistErr("insert state", err)
	}
	return id, nil
}

// AllStates returns every state record ordered by state name.
func (s *Store) AllStates(ctx context.Context) ([]StateRecord, error) {
	b := s.builder()
	query, args := b.Select(stateColumns...).
		From(b.Table(tableStates)).
		OrderBy(entsql.Asc(colStateName), entsql.Asc(colID)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query states", err)
	}
	defer rows.Close()

	var states []StateRecord
	for rows.Next() {
		rec, err := scanState(rows)
		if err != nil {
			return nil, persistErr("scan state", err)
		}
		states = append(states, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query states", err)
	}
	return states, nil
}

// StateByID returns the state with the given id, or nil if none exists.
func (s *Store) StateByID(ctx context.Context, id int) (*StateRecord, error) {
	b := s.builder()
	query, args := b.Select(stateColumns...).
		From(b.Table(tableStates)).
		Where(entsql.EQ(colID, id)).
		Query()

	rec, err := scanState(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr("query state", err)
	}
	return rec, nil
}

// SampleUniqueStateIDs draws count distinct state ids uniformly at random.
func (s *Store) SampleUniqueStateIDs(ctx context.Context, count int) ([]int, error) {
	if count < 0 {
		return nil, &InvalidArgumentError{Op: "sample states", Reason: "negative count"}
	}

	b := s.builder()
	query, args := b.Select(colID).From(b.Table(tableStates)).Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query state ids", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, persistErr("scan state id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("query state ids", err)
	}

	if len(ids) < count {
		return nil, &InsufficientDataError{Need: count, Have: len(ids)}
	}
	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids[:count], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanState(r rowScanner) (*StateRecord, error) {
	var (
		rec                    StateRecord
		statehood, since, rank sql.NullInt64
	)
	err := r.Scan(
		&rec.ID,
		&rec.StateName,
		&rec.CapitalCity,
		&rec.City2,
		&rec.City3,
		&statehood,
		&since,
		&rank,
	)
	if err != nil {
		return nil, err
	}
	rec.StatehoodYear = intPtr(statehood)
	rec.CapitalSinceYear = intPtr(since)
	rec.CapitalRank = intPtr(rank)
	return &rec, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
