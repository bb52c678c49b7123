package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/capitals/internal/session"
	"github.com/abhisek/capitals/internal/store"
)

type questionView struct {
	Number   int      `json:"number"`
	Text     string   `json:"text"`
	Choices  []string `json:"choices"`
	Selected int      `json:"selected"`
}

type quizView struct {
	Phase      string          `json:"phase"`
	QuizID     int             `json:"quiz_id,omitempty"`
	Questions  []questionView  `json:"questions,omitempty"`
	Unanswered int             `json:"unanswered"`
	Result     *session.Result `json:"result,omitempty"`
}

type selectRequest struct {
	Choice *int `json:"choice"`
}

// quizViewLocked snapshots the controller. Callers hold s.mu.
func (s *Server) quizViewLocked() quizView {
	v := quizView{Phase: s.ctrl.Phase().String()}
	sess := s.ctrl.Session()
	if sess == nil {
		return v
	}
	v.QuizID = sess.ID
	for i, q := range s.ctrl.Questions() {
		n := i + 1
		v.Questions = append(v.Questions, questionView{
			Number:   n,
			Text:     q.Text(),
			Choices:  q.Choices[:],
			Selected: s.ctrl.Selection(n),
		})
	}
	v.Unanswered = s.ctrl.Unanswered()
	v.Result = s.ctrl.Result()
	return v
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Phase() == session.PhaseUninitialized {
		s.writeError(w, &session.PhaseError{Op: "list states", Phase: s.ctrl.Phase()})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.States())
}

func (s *Server) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.quizViewLocked())
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ctrl.StartNewSession(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.quizViewLocked())
}

func (s *Server) handleResumeQuiz(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.ctrl.ResumeSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		writeErr(w, http.StatusNotFound, "no unfinished quiz to resume")
		return
	}
	writeJSON(w, http.StatusOK, s.quizViewLocked())
}

func (s *Server) handleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "question number must be an integer")
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad json")
		return
	}
	if req.Choice == nil {
		writeErr(w, http.StatusBadRequest, "choice required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.SelectAnswer(r.Context(), n, *req.Choice); err != nil {
		s.writeError(w, err)
		return
	}
	q, _ := s.ctrl.Question(n)
	writeJSON(w, http.StatusOK, questionView{
		Number:   n,
		Text:     q.Text(),
		Choices:  q.Choices[:],
		Selected: s.ctrl.Selection(n),
	})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ctrl.FinalizeSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.NewQuiz(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.quizViewLocked())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.history(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if history == nil {
		history = []store.QuizSession{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	history, err := s.history(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Summarize(history))
}

func (s *Server) history(ctx context.Context) ([]store.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.LoadHistory(ctx)
}

// statusFor maps controller and store errors to HTTP status codes.
func statusFor(err error) int {
	var (
		phaseErr       *session.PhaseError
		invalidErr     *store.InvalidArgumentError
		insufficient   *store.InsufficientDataError
		unavailableErr *session.DataUnavailableError
	)
	switch {
	case errors.As(err, &phaseErr):
		return http.StatusConflict
	case errors.As(err, &invalidErr):
		return http.StatusBadRequest
	case errors.As(err, &insufficient), errors.As(err, &unavailableErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
		writeErr(w, status, "internal error")
		return
	}
	writeErr(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
