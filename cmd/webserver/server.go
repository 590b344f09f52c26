package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"timedquiz"

	"github.com/gorilla/sessions"
)

// Server exposes the quiz engine over HTTP. Every request rebuilds the session
// from the descriptor kept in the test-taker's gorilla session.
type Server struct {
	store    timedquiz.Store
	sessions sessions.Store
	quiz     timedquiz.QuizConfig
}

func NewServer(store timedquiz.Store, sessionStore sessions.Store, quiz timedquiz.QuizConfig) *Server {
	return &Server{store: store, sessions: sessionStore, quiz: quiz}
}

// Routes returns the HTTP handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/quiz", s.handleQuiz)
	mux.HandleFunc("/quiz/answer", s.handleAnswer)
	mux.HandleFunc("/quiz/next", s.handleNext)
	mux.HandleFunc("/quiz/previous", s.handlePrevious)
	mux.HandleFunc("/results", s.handleResults)
	return mux
}

type questionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type quizView struct {
	Question         *questionView          `json:"question,omitempty"`
	Index            int                    `json:"index"`
	Total            int                    `json:"total"`
	Selected         string                 `json:"selected,omitempty"`
	Remaining        string                 `json:"remaining"`
	RemainingSeconds int                    `json:"remaining_seconds"`
	Finished         bool                   `json:"finished"`
	FinishReason     timedquiz.FinishReason `json:"finish_reason,omitempty"`
	Score            int                    `json:"score,omitempty"`
	PassMark         int                    `json:"pass_mark"`
	Passed           bool                   `json:"passed,omitempty"`
	Review           []timedquiz.Review     `json:"review,omitempty"`
	SubmissionError  string                 `json:"submission_error,omitempty"`
}

type resultView struct {
	timedquiz.Result
	Passed bool `json:"passed"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) (*timedquiz.Session, bool) {
	descriptors := timedquiz.NewSessionDescriptorStore(s.sessions, w, r)
	session, err := timedquiz.Start(r.Context(), s.quiz.Options(), s.store, s.store, descriptors)
	if err != nil {
		if errors.Is(err, timedquiz.ErrEmptyBank) {
			writeError(w, http.StatusServiceUnavailable, "No questions available, the quiz cannot start")
			return nil, false
		}
		log.Printf("Failed to start quiz session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to start quiz")
		return nil, false
	}
	return session, true
}

// requireSession refuses actions when there is no quiz in progress, so a stray
// POST does not silently create one
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) bool {
	d, err := timedquiz.NewSessionDescriptorStore(s.sessions, w, r).Load()
	if err != nil || !d.HasSession() {
		writeError(w, http.StatusConflict, "No quiz in progress")
		return false
	}
	return true
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := s.startSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	option := r.FormValue("option")
	if option == "" {
		writeError(w, http.StatusBadRequest, "Option is required")
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	session, ok := s.startSession(w, r)
	if !ok {
		return
	}
	if err := session.SelectAnswer(option); err != nil && !errors.Is(err, timedquiz.ErrFinished) {
		log.Printf("Failed to record answer: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to record answer")
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	session, ok := s.startSession(w, r)
	if !ok {
		return
	}
	switch err := session.Next(); {
	case err == nil, errors.Is(err, timedquiz.ErrFinished):
	case errors.Is(err, timedquiz.ErrUnanswered):
		writeError(w, http.StatusConflict, "Answer the current question first")
		return
	default:
		log.Printf("Failed to advance: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to advance")
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireSession(w, r) {
		return
	}

	session, ok := s.startSession(w, r)
	if !ok {
		return
	}
	if err := session.Previous(); err != nil && !errors.Is(err, timedquiz.ErrFinished) {
		log.Printf("Failed to go back: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to go back")
		return
	}
	writeJSON(w, http.StatusOK, s.view(session))
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, err := s.store.ListResults(r.Context())
	if err != nil {
		log.Printf("Failed to get results: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to get results")
		return
	}

	views := make([]resultView, 0, len(results))
	for _, result := range results {
		views = append(views, resultView{
			Result: result,
			Passed: result.Score >= s.quiz.PassMark(result.Total),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": views})
}

func (s *Server) view(session *timedquiz.Session) quizView {
	remaining := session.Remaining()
	v := quizView{
		Index:            session.CurrentIndex(),
		Total:            session.Total(),
		Remaining:        timedquiz.FormatRemaining(remaining),
		RemainingSeconds: int(remaining.Seconds()),
		Finished:         session.Finished(),
		PassMark:         session.PassMark(),
	}

	if v.Finished {
		v.FinishReason = session.FinishReason()
		v.Score = session.Score()
		v.Passed = session.Passed()
		v.Review = session.Review()
		if err := session.SubmissionErr(); err != nil {
			v.SubmissionError = "Your result could not be saved yet; it will be retried"
		}
		return v
	}

	q := session.CurrentQuestion()
	v.Question = &questionView{ID: q.ID, Text: q.Text, Options: q.Options}
	if answer, ok := session.Answer(q.ID); ok {
		v.Selected = answer
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
