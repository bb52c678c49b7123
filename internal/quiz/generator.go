package quiz

import (
	"math/rand/v2"
	"sync"

	"github.com/abhisek/capitals/internal/store"
)

// Generator picks quiz states and builds shuffled questions.
// It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from src. A nil src seeds from
// the runtime's random source.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rng: rand.New(src)}
}

// SelectSessionStates draws k distinct states uniformly at random.
func (g *Generator) SelectSessionStates(all []store.StateRecord, k int) ([]store.StateRecord, error) {
	if len(all) < k {
		return nil, &store.InsufficientDataError{Need: k, Have: len(all)}
	}

	g.mu.Lock()
	perm := g.rng.Perm(len(all))
	g.mu.Unlock()

	picked := make([]store.StateRecord, k)
	for i := range picked {
		picked[i] = all[perm[i]]
	}
	return picked, nil
}

// BuildQuestion builds a question for state with its three cities in random
// order.
func (g *Generator) BuildQuestion(state store.StateRecord) Question {
	q := Question{
		State:   state,
		Choices: [ChoicesPerQuestion]string{state.CapitalCity, state.City2, state.City3},
	}

	g.mu.Lock()
	g.rng.Shuffle(len(q.Choices), func(i, j int) {
		q.Choices[i], q.Choices[j] = q.Choices[j], q.Choices[i]
	})
	g.mu.Unlock()

	// First match wins if a record repeats its capital among the distractors.
	for i, c := range q.Choices {
		if c == state.CapitalCity {
			q.CorrectIndex = i
			break
		}
	}
	return q
}

// BuildQuestions builds one question per state, preserving order.
func (g *Generator) BuildQuestions(states []store.StateRecord) []Question {
	questions := make([]Question, len(states))
	for i, s := range states {
		questions[i] = g.BuildQuestion(s)
	}
	return questions
}

// BuildSession selects six states and builds their questions. The returned
// session's StateIDs follow question order. The session is not persisted.
func (g *Generator) BuildSession(all []store.StateRecord) (*store.QuizSession, []Question, error) {
	states, err := g.SelectSessionStates(all, store.QuestionsPerQuiz)
	if err != nil {
		return nil, nil, err
	}

	session := &store.QuizSession{}
	for i, s := range states {
		session.StateIDs[i] = s.ID
	}
	return session, g.BuildQuestions(states), nil
}
