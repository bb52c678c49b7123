// Package session coordinates catalog loading, a single quiz lifecycle, and
// quiz history on top of the store and quiz packages.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/capitals/internal/importer"
	"github.com/abhisek/capitals/internal/quiz"
	"github.com/abhisek/capitals/internal/store"
)

// Catalog is the persistence the controller needs. *store.Store satisfies it.
type Catalog interface {
	importer.Inserter
	AllStates(ctx context.Context) ([]store.StateRecord, error)
	CreateSession(ctx context.Context, stateIDs []int) (int, error)
	UpdateSessionProgress(ctx context.Context, id, score, questionsAnswered int) error
	CompleteSession(ctx context.Context, id, finalScore int, completedAt time.Time) error
	CompletedSessions(ctx context.Context) ([]store.QuizSession, error)
	MostRecentIncompleteSession(ctx context.Context) (*store.QuizSession, error)
	SaveSelection(ctx context.Context, quizID, questionNumber int, answer string) error
	ClearSelection(ctx context.Context, quizID, questionNumber int) error
	Selections(ctx context.Context, quizID int) (map[int]string, error)
}

// Options configures a Controller.
type Options struct {
	Catalog Catalog

	// Source seeds an empty catalog. Nil disables seeding.
	Source importer.Source

	// SourceName describes Source in errors and logs.
	SourceName string

	// Generator builds quizzes. Nil uses a randomly seeded generator.
	Generator *quiz.Generator

	// Logger receives best-effort persistence failures. Nil discards.
	Logger *slog.Logger

	// Now returns the completion timestamp. Nil uses time.Now.
	Now func() time.Time
}

// Outcome is the scored result of one question.
type Outcome struct {
	Number        int    `json:"number"`
	StateName     string `json:"state_name"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Result is the outcome of a finalized quiz.
type Result struct {
	QuizID      int       `json:"quiz_id"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Controller owns the current quiz. It is not safe for concurrent use;
// store operations run on one background worker and are awaited.
type Controller struct {
	catalog    Catalog
	source     importer.Source
	sourceName string
	gen        *quiz.Generator
	log        *slog.Logger
	now        func() time.Time
	worker     *worker

	phase      Phase
	states     []store.StateRecord
	session    *store.QuizSession
	questions  []quiz.Question
	selections map[int]int
	result     *Result
}

// New creates a Controller in PhaseUninitialized. Call Close when done.
func New(opts Options) *Controller {
	c := &Controller{
		catalog:    opts.Catalog,
		source:     opts.Source,
		sourceName: opts.SourceName,
		gen:        opts.Generator,
		log:        opts.Logger,
		now:        opts.Now,
		worker:     newWorker(),
	}
	if c.sourceName == "" {
		c.sourceName = "bundled data"
	}
	if c.gen == nil {
		c.gen = quiz.NewGenerator(nil)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Close waits for in-flight store operations and stops the worker. The
// catalog is not closed.
func (c *Controller) Close() {
	c.worker.close()
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// States returns the loaded reference records.
func (c *Controller) States() []store.StateRecord {
	return append([]store.StateRecord(nil), c.states...)
}

// Load fetches reference data, seeding the catalog from the bulk import
// source once if it is empty. On failure the controller stays
// uninitialized and Load may be retried.
func (c *Controller) Load(ctx context.Context) error {
	if c.phase != PhaseUninitialized {
		return &PhaseError{Op: "load", Phase: c.phase}
	}
	c.phase = PhaseLoading

	states, err := c.loadStates(ctx)
	if err != nil {
		c.phase = PhaseUninitialized
		return err
	}
	c.states = states
	c.phase = PhaseReady
	return nil
}

func (c *Controller) loadStates(ctx context.Context) ([]store.StateRecord, error) {
	states, err := run(ctx, c.worker, c.catalog.AllStates)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	if len(states) > 0 {
		c.log.Debug("states loaded", "count", len(states))
		return states, nil
	}
	if c.source == nil {
		return nil, &DataUnavailableError{Source: c.sourceName}
	}

	c.log.Info("state catalog empty, importing", "source", c.sourceName)
	n, err := run(ctx, c.worker, func(ctx context.Context) (int, error) {
		return importer.Import(ctx, c.catalog, c.source)
	})
	if err != nil {
		return nil, fmt.Errorf("import states: %w", err)
	}
	c.log.Info("states imported", "count", n)

	states, err = run(ctx, c.worker, c.catalog.AllStates)
	if err != nil {
		return nil, fmt.Errorf("load states: %w", err)
	}
	if len(states) == 0 {
		return nil, &DataUnavailableError{Source: c.sourceName}
	}
	return states, nil
}

// StartNewSession builds and persists a quiz of six distinct states.
func (c *Controller) StartNewSession(ctx context.Context) ([]quiz.Question, error) {
	if c.phase != PhaseReady {
		return nil, &PhaseError{Op: "start session", Phase: c.phase}
	}

	sess, questions, err := c.gen.BuildSession(c.states)
	if err != nil {
		return nil, err
	}

	id, err := run(ctx, c.worker, func(ctx context.Context) (int, error) {
		return c.catalog.CreateSession(ctx, sess.StateIDs[:])
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess.ID = id

	c.begin(sess, questions)
	return c.Questions(), nil
}

// ResumeSession restores the most recent unfinished quiz with its saved
// selections. Choices are reshuffled. It reports false when there is
// nothing to resume.
func (c *Controller) ResumeSession(ctx context.Context) (bool, error) {
	if c.phase != PhaseReady {
		return false, &PhaseError{Op: "resume session", Phase: c.phase}
	}

	sess, err := run(ctx, c.worker, c.catalog.MostRecentIncompleteSession)
	if err != nil {
		return false, fmt.Errorf("find incomplete session: %w", err)
	}
	if sess == nil {
		return false, nil
	}

	byID := make(map[int]store.StateRecord, len(c.states))
	for _, s := range c.states {
		byID[s.ID] = s
	}
	states := make([]store.StateRecord, store.QuestionsPerQuiz)
	for i, id := range sess.StateIDs {
		s, ok := byID[id]
		if !ok {
			return false, fmt.Errorf("resume session %d: state %d not loaded", sess.ID, id)
		}
		states[i] = s
	}

	saved, err := run(ctx, c.worker, func(ctx context.Context) (map[int]string, error) {
		return c.catalog.Selections(ctx, sess.ID)
	})
	if err != nil {
		return false, fmt.Errorf("load selections: %w", err)
	}

	c.begin(sess, c.gen.BuildQuestions(states))
	for n, answer := range saved {
		if n < 1 || n > len(c.questions) {
			continue
		}
		if choice := c.questions[n-1].ChoiceNumber(answer); choice > 0 {
			c.selections[n] = choice
		}
	}
	return true, nil
}

func (c *Controller) begin(sess *store.QuizSession, questions []quiz.Question) {
	c.session = sess
	c.questions = questions
	c.selections = make(map[int]int, store.QuestionsPerQuiz)
	c.result = nil
	c.phase = PhaseInProgress
}

// Session returns a copy of the current quiz, or nil.
func (c *Controller) Session() *store.QuizSession {
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Questions returns the current quiz's questions in order.
func (c *Controller) Questions() []quiz.Question {
	return append([]quiz.Question(nil), c.questions...)
}

// Question returns the 1-based question n.
func (c *Controller) Question(n int) (quiz.Question, bool) {
	if n < 1 || n > len(c.questions) {
		return quiz.Question{}, false
	}
	return c.questions[n-1], true
}

// SelectAnswer records choice (1..3) for question n (1..6), replacing any
// earlier selection. Choice 0 clears it. Persisting the selection is best
// effort: failures are logged and the in-memory selection stands.
func (c *Controller) SelectAnswer(ctx context.Context, n, choice int) error {
	if c.phase != PhaseInProgress {
		return &PhaseError{Op: "select answer", Phase: c.phase}
	}
	q, ok := c.Question(n)
	if !ok {
		return &store.InvalidArgumentError{
			Op:     "select answer",
			Reason: fmt.Sprintf("question %d out of range 1..%d", n, len(c.questions)),
		}
	}
	if choice < 0 || choice > quiz.ChoicesPerQuestion {
		return &store.InvalidArgumentError{
			Op:     "select answer",
			Reason: fmt.Sprintf("choice %d out of range 0..%d", choice, quiz.ChoicesPerQuestion),
		}
	}

	quizID := c.session.ID
	if choice == 0 {
		delete(c.selections, n)
		err := exec(ctx, c.worker, func(ctx context.Context) error {
			return c.catalog.ClearSelection(ctx, quizID, n)
		})
		if err != nil {
			c.log.Warn("clear selection failed", "quiz_id", quizID, "question", n, "err", err)
		}
		return nil
	}

	c.selections[n] = choice
	answer := q.Choices[choice-1]
	err := exec(ctx, c.worker, func(ctx context.Context) error {
		return c.catalog.SaveSelection(ctx, quizID, n, answer)
	})
	if err != nil {
		c.log.Warn("save selection failed", "quiz_id", quizID, "question", n, "err", err)
	}
	return nil
}

// Selection returns the choice recorded for question n, or 0.
func (c *Controller) Selection(n int) int {
	return c.selections[n]
}

// Unanswered counts questions with no selection.
func (c *Controller) Unanswered() int {
	count := 0
	for n := 1; n <= len(c.questions); n++ {
		if c.selections[n] == 0 {
			count++
		}
	}
	return count
}

// FinalizeSession scores each selected question exactly once and persists
// the completed quiz. Unanswered questions score as incorrect. Scoring runs
// on a copy of the session, so if completion fails the controller stays
// in progress and a retry does not double count.
func (c *Controller) FinalizeSession(ctx context.Context) (*Result, error) {
	if c.phase != PhaseInProgress {
		return nil, &PhaseError{Op: "finalize session", Phase: c.phase}
	}

	working := *c.session
	working.Score = 0
	working.QuestionsAnswered = 0
	working.CompletedAt = nil

	outcomes := make([]Outcome, len(c.questions))
	for i, q := range c.questions {
		n := i + 1
		outcomes[i] = Outcome{
			Number:        n,
			StateName:     q.State.StateName,
			CorrectAnswer: q.CorrectAnswer(),
		}
		choice := c.selections[n]
		if choice == 0 {
			continue
		}
		answer := q.Choices[choice-1]
		outcomes[i].Selected = answer
		outcomes[i].Correct = quiz.RecordAnswer(&working, q, answer)

		if working.QuestionsAnswered < store.QuestionsPerQuiz {
			c.persistProgress(ctx, working)
		}
	}

	score := quiz.FinalScore(&working)
	completedAt := c.now().UTC()
	err := exec(ctx, c.worker, func(ctx context.Context) error {
		return c.catalog.CompleteSession(ctx, working.ID, score, completedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	working.QuestionsAnswered = store.QuestionsPerQuiz
	working.CompletedAt = &completedAt
	c.session = &working
	c.result = &Result{
		QuizID:      working.ID,
		Score:       score,
		Total:       store.QuestionsPerQuiz,
		Message:     quiz.ResultMessage(score),
		CompletedAt: completedAt,
		Outcomes:    outcomes,
	}
	c.phase = PhaseCompleted
	return c.Result(), nil
}

func (c *Controller) persistProgress(ctx context.Context, s store.QuizSession) {
	err := exec(ctx, c.worker, func(ctx context.Context) error {
		return c.catalog.UpdateSessionProgress(ctx, s.ID, s.Score, s.QuestionsAnswered)
	})
	if err != nil {
		c.log.Warn("update session progress failed", "quiz_id", s.ID, "err", err)
	}
}

// Result returns a copy of the finalized quiz result, or nil before
// finalization.
func (c *Controller) Result() *Result {
	if c.result == nil {
		return nil
	}
	r := *c.result
	r.Outcomes = append([]Outcome(nil), c.result.Outcomes...)
	return &r
}

// NewQuiz clears the completed quiz and returns to PhaseReady. It is the
// only way out of PhaseCompleted.
func (c *Controller) NewQuiz() error {
	if c.phase != PhaseCompleted {
		return &PhaseError{Op: "new quiz", Phase: c.phase}
	}
	c.session = nil
	c.questions = nil
	c.selections = nil
	c.result = nil
	c.phase = PhaseReady
	return nil
}

// LoadHistory returns completed quizzes, most recent first.
func (c *Controller) LoadHistory(ctx context.Context) ([]store.QuizSession, error) {
	history, err := run(ctx, c.worker, c.catalog.CompletedSessions)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return history, nil
}
