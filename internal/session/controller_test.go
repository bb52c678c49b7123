package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/capitals/internal/importer"
	"github.com/abhisek/capitals/internal/quiz"
	"github.com/abhisek/capitals/internal/store"
)

var errBoom = errors.New("boom")

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	s, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func csvSource(n int) importer.Source {
	var b strings.Builder
	b.WriteString("State,Capital city,Second city,Third city,Statehood,Capital since,Capital rank\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "State%02d,Capital%02d,CityB%02d,CityC%02d,,,\n", i, i, i, i)
	}
	data := b.String()
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(data)), nil
	}
}

func failingSource() importer.Source {
	return func() (io.ReadCloser, error) {
		return nil, errors.New("source must not be opened")
	}
}

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func newTestController(t *testing.T, cat Catalog, src importer.Source) *Controller {
	t.Helper()
	c := New(Options{
		Catalog:   cat,
		Source:    src,
		Generator: quiz.NewGenerator(rand.NewPCG(7, 11)),
		Now:       func() time.Time { return fixedNow },
	})
	t.Cleanup(c.Close)
	return c
}

func startedController(t *testing.T, cat Catalog) *Controller {
	t.Helper()
	c := newTestController(t, cat, csvSource(10))
	require.NoError(t, c.Load(context.Background()))
	_, err := c.StartNewSession(context.Background())
	require.NoError(t, err)
	return c
}

func correctChoice(q quiz.Question) int { return q.CorrectIndex + 1 }

func wrongChoice(q quiz.Question) int { return (q.CorrectIndex+1)%quiz.ChoicesPerQuestion + 1 }

// flakyCatalog wraps a real store with injectable failures.
type flakyCatalog struct {
	*store.Store
	failProgress  error
	failComplete  error
	failSave      error
	progressCalls [][2]int
	completeCalls int

	historyStarted chan struct{}
	blockHistory   chan struct{}
	historyCtx     chan error
}

func (f *flakyCatalog) UpdateSessionProgress(ctx context.Context, id, score, answered int) error {
	f.progressCalls = append(f.progressCalls, [2]int{score, answered})
	if f.failProgress != nil {
		return f.failProgress
	}
	return f.Store.UpdateSessionProgress(ctx, id, score, answered)
}

func (f *flakyCatalog) CompleteSession(ctx context.Context, id, score int, at time.Time) error {
	f.completeCalls++
	if f.failComplete != nil {
		return f.failComplete
	}
	return f.Store.CompleteSession(ctx, id, score, at)
}

func (f *flakyCatalog) SaveSelection(ctx context.Context, quizID, n int, answer string) error {
	if f.failSave != nil {
		return f.failSave
	}
	return f.Store.SaveSelection(ctx, quizID, n, answer)
}

func (f *flakyCatalog) CompletedSessions(ctx context.Context) ([]store.QuizSession, error) {
	if f.blockHistory != nil {
		close(f.historyStarted)
		<-f.blockHistory
		f.historyCtx <- ctx.Err()
	}
	return f.Store.CompletedSessions(ctx)
}

func TestLoadSeedsEmptyCatalog(t *testing.T) {
	s := openTestStore(t)
	c := newTestController(t, s, importer.EmbeddedSource())
	require.Equal(t, PhaseUninitialized, c.Phase())

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Len(t, c.States(), 50)

	empty, err := s.IsEmpty(context.Background())
	require.NoError(t, err)
	assert.False(t, empty)
}

func TestLoadSkipsImportWhenPopulated(t *testing.T) {
	s := openTestStore(t)
	_, err := importer.Import(context.Background(), s, csvSource(7))
	require.NoError(t, err)

	c := newTestController(t, s, failingSource())
	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.States(), 7)
}

func TestLoadDataUnavailable(t *testing.T) {
	tests := []struct {
		name string
		src  importer.Source
	}{
		{"empty import file", csvSource(0)},
		{"no import source", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, openTestStore(t), tt.src)

			err := c.Load(context.Background())
			var unavailable *DataUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, PhaseUninitialized, c.Phase())
		})
	}
}

func TestLoadParseErrorThenRetry(t *testing.T) {
	s := openTestStore(t)
	bad := func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("h1,h2,h3,h4,h5\nA,B,C,D,notayear\n")), nil
	}
	c := newTestController(t, s, bad)

	err := c.Load(context.Background())
	var pe *importer.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseUninitialized, c.Phase())

	c.source = csvSource(6)
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestLoadTwice(t *testing.T) {
	c := newTestController(t, openTestStore(t), csvSource(6))
	require.NoError(t, c.Load(context.Background()))

	var pe *PhaseError
	require.ErrorAs(t, c.Load(context.Background()), &pe)
	assert.Equal(t, PhaseReady, pe.Phase)
}

func TestStartNewSessionRequiresReady(t *testing.T) {
	c := newTestController(t, openTestStore(t), csvSource(6))

	_, err := c.StartNewSession(context.Background())
	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseUninitialized, pe.Phase)
}

func TestStartNewSessionInsufficientData(t *testing.T) {
	c := newTestController(t, openTestStore(t), csvSource(5))
	require.NoError(t, c.Load(context.Background()))

	_, err := c.StartNewSession(context.Background())
	var insufficient *store.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Have)
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestStartNewSessionPersists(t *testing.T) {
	s := openTestStore(t)
	c := newTestController(t, s, csvSource(20))
	require.NoError(t, c.Load(context.Background()))

	questions, err := c.StartNewSession(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, store.QuestionsPerQuiz)
	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Equal(t, store.QuestionsPerQuiz, c.Unanswered())

	sess := c.Session()
	require.NotNil(t, sess)
	got, err := s.SessionByID(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	for i, q := range questions {
		assert.Equal(t, q.State.ID, got.StateIDs[i], "slot %d", i+1)
	}
	assert.Zero(t, got.Score)
	assert.Zero(t, got.QuestionsAnswered)
	assert.Nil(t, got.CompletedAt)
}

func TestSelectAnswerValidation(t *testing.T) {
	c := startedController(t, openTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name   string
		n      int
		choice int
	}{
		{"question zero", 0, 1},
		{"question seven", 7, 1},
		{"negative choice", 1, -1},
		{"choice four", 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ia *store.InvalidArgumentError
			require.ErrorAs(t, c.SelectAnswer(ctx, tt.n, tt.choice), &ia)
		})
	}
	assert.Equal(t, store.QuestionsPerQuiz, c.Unanswered())
}

func TestSelectAnswerRequiresInProgress(t *testing.T) {
	c := newTestController(t, openTestStore(t), csvSource(6))
	require.NoError(t, c.Load(context.Background()))

	var pe *PhaseError
	require.ErrorAs(t, c.SelectAnswer(context.Background(), 1, 1), &pe)
	assert.Equal(t, PhaseReady, pe.Phase)
}

func TestSelectAnswerOverwriteAndClear(t *testing.T) {
	s := openTestStore(t)
	c := startedController(t, s)
	ctx := context.Background()
	q, _ := c.Question(2)

	require.NoError(t, c.SelectAnswer(ctx, 2, 1))
	require.NoError(t, c.SelectAnswer(ctx, 2, 3))
	assert.Equal(t, 3, c.Selection(2))
	assert.Equal(t, 5, c.Unanswered())

	saved, err := s.Selections(ctx, c.Session().ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{2: q.Choices[2]}, saved)

	require.NoError(t, c.SelectAnswer(ctx, 2, 0))
	assert.Zero(t, c.Selection(2))
	assert.Equal(t, 6, c.Unanswered())

	saved, err = s.Selections(ctx, c.Session().ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSelectAnswerPersistFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	cat := &flakyCatalog{Store: openTestStore(t), failSave: errBoom}
	c := New(Options{
		Catalog: cat,
		Source:  csvSource(6),
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	_, err := c.StartNewSession(ctx)
	require.NoError(t, err)

	require.NoError(t, c.SelectAnswer(ctx, 1, 2))
	assert.Equal(t, 2, c.Selection(1))
	assert.Contains(t, logs.String(), "save selection failed")
}

func TestFinalizeFourCorrectTwoIncorrect(t *testing.T) {
	s := openTestStore(t)
	c := startedController(t, s)
	ctx := context.Background()

	for i, q := range c.Questions() {
		n := i + 1
		// Revise every answer once to prove revisions are not double counted.
		require.NoError(t, c.SelectAnswer(ctx, n, wrongChoice(q)))
		choice := correctChoice(q)
		if n > 4 {
			choice = wrongChoice(q)
		}
		require.NoError(t, c.SelectAnswer(ctx, n, choice))
	}
	require.Zero(t, c.Unanswered())

	res, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Score)
	assert.Equal(t, store.QuestionsPerQuiz, res.Total)
	assert.Equal(t, "Great job!", res.Message)
	assert.Equal(t, fixedNow, res.CompletedAt)
	require.Len(t, res.Outcomes, store.QuestionsPerQuiz)
	for i, o := range res.Outcomes {
		assert.Equal(t, i+1, o.Number)
		assert.Equal(t, i < 4, o.Correct, "question %d", o.Number)
	}
	assert.Equal(t, PhaseCompleted, c.Phase())

	got, err := s.SessionByID(ctx, res.QuizID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, store.QuestionsPerQuiz, got.QuestionsAnswered)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(fixedNow))
}

func TestFinalizeWithUnanswered(t *testing.T) {
	s := openTestStore(t)
	c := startedController(t, s)
	ctx := context.Background()

	for n := 1; n <= 3; n++ {
		q, _ := c.Question(n)
		require.NoError(t, c.SelectAnswer(ctx, n, correctChoice(q)))
	}
	assert.Equal(t, 3, c.Unanswered())

	res, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Score)
	assert.Empty(t, res.Outcomes[5].Selected)
	assert.False(t, res.Outcomes[5].Correct)

	got, err := s.SessionByID(ctx, res.QuizID)
	require.NoError(t, err)
	assert.Equal(t, store.QuestionsPerQuiz, got.QuestionsAnswered)
}

func TestFinalizeProgressUpdates(t *testing.T) {
	cat := &flakyCatalog{Store: openTestStore(t)}
	c := startedController(t, cat)
	ctx := context.Background()

	for i, q := range c.Questions() {
		require.NoError(t, c.SelectAnswer(ctx, i+1, correctChoice(q)))
	}
	_, err := c.FinalizeSession(ctx)
	require.NoError(t, err)

	// The sixth answer completes the quiz, so only five progress writes.
	assert.Equal(t, [][2]int{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}, cat.progressCalls)
	assert.Equal(t, 1, cat.completeCalls)
}

func TestFinalizeProgressFailureSwallowed(t *testing.T) {
	var logs bytes.Buffer
	cat := &flakyCatalog{Store: openTestStore(t), failProgress: errBoom}
	c := New(Options{
		Catalog: cat,
		Source:  csvSource(6),
		Logger:  slog.New(slog.NewTextHandler(&logs, nil)),
	})
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))
	questions, err := c.StartNewSession(ctx)
	require.NoError(t, err)
	for i, q := range questions {
		require.NoError(t, c.SelectAnswer(ctx, i+1, correctChoice(q)))
	}

	res, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Score)
	assert.Equal(t, "Perfect!", res.Message)
	assert.Contains(t, logs.String(), "update session progress failed")
}

func TestFinalizeCompleteFailureThenRetry(t *testing.T) {
	cat := &flakyCatalog{Store: openTestStore(t), failComplete: errBoom}
	c := startedController(t, cat)
	ctx := context.Background()

	for i, q := range c.Questions() {
		choice := correctChoice(q)
		if i%2 == 1 {
			choice = wrongChoice(q)
		}
		require.NoError(t, c.SelectAnswer(ctx, i+1, choice))
	}

	_, err := c.FinalizeSession(ctx)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Zero(t, c.Session().Score)
	assert.Nil(t, c.Result())

	cat.failComplete = nil
	res, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, PhaseCompleted, c.Phase())

	got, err := cat.SessionByID(ctx, res.QuizID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, store.QuestionsPerQuiz, got.QuestionsAnswered)
}

func TestNewQuiz(t *testing.T) {
	c := startedController(t, openTestStore(t))
	ctx := context.Background()

	var pe *PhaseError
	require.ErrorAs(t, c.NewQuiz(), &pe)
	assert.Equal(t, PhaseInProgress, pe.Phase)

	_, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	_, err = c.FinalizeSession(ctx)
	require.ErrorAs(t, err, &pe)

	require.NoError(t, c.NewQuiz())
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Nil(t, c.Session())
	assert.Empty(t, c.Questions())
	assert.Nil(t, c.Result())

	_, err = c.StartNewSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestResumeSession(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := startedController(t, s)
	q1, _ := first.Question(1)
	q4, _ := first.Question(4)
	require.NoError(t, first.SelectAnswer(ctx, 1, correctChoice(q1)))
	require.NoError(t, first.SelectAnswer(ctx, 4, wrongChoice(q4)))
	quizID := first.Session().ID
	first.Close()

	second := newTestController(t, s, failingSource())
	require.NoError(t, second.Load(ctx))
	ok, err := second.ResumeSession(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PhaseInProgress, second.Phase())
	assert.Equal(t, quizID, second.Session().ID)
	assert.Equal(t, 4, second.Unanswered())

	r1, _ := second.Question(1)
	r4, _ := second.Question(4)
	assert.Equal(t, q1.State.ID, r1.State.ID)
	assert.Equal(t, q1.Choices[correctChoice(q1)-1], r1.Choices[second.Selection(1)-1])
	assert.Equal(t, q4.Choices[wrongChoice(q4)-1], r4.Choices[second.Selection(4)-1])

	res, err := second.FinalizeSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
}

func TestResumeSessionNothingToResume(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c := startedController(t, s)
	_, err := c.FinalizeSession(ctx)
	require.NoError(t, err)
	require.NoError(t, c.NewQuiz())

	ok, err := c.ResumeSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestLoadHistory(t *testing.T) {
	s := openTestStore(t)
	c := startedController(t, s)
	ctx := context.Background()

	var ids []int
	for round := 0; round < 2; round++ {
		if round > 0 {
			require.NoError(t, c.NewQuiz())
			_, err := c.StartNewSession(ctx)
			require.NoError(t, err)
		}
		res, err := c.FinalizeSession(ctx)
		require.NoError(t, err)
		ids = append(ids, res.QuizID)
	}

	history, err := c.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Same completion time, so the later quiz sorts first by id.
	assert.Equal(t, ids[1], history[0].ID)
	assert.Equal(t, ids[0], history[1].ID)
}

func TestCanceledCallerDoesNotCancelStoreOperation(t *testing.T) {
	cat := &flakyCatalog{
		Store:          openTestStore(t),
		historyStarted: make(chan struct{}),
		blockHistory:   make(chan struct{}),
		historyCtx:     make(chan error, 1),
	}
	c := newTestController(t, cat, csvSource(6))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.LoadHistory(ctx)
		errCh <- err
	}()

	<-cat.historyStarted
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	close(cat.blockHistory)
	assert.NoError(t, <-cat.historyCtx, "store operation must see a live context")
}

func TestClosedController(t *testing.T) {
	c := New(Options{Catalog: openTestStore(t)})
	c.Close()

	_, err := c.LoadHistory(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
