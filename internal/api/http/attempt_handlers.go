package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skill-forge/skillforge-lms/internal/grading"
	"github.com/skill-forge/skillforge-lms/internal/quiz"
	"github.com/skill-forge/skillforge-lms/internal/rbac"
)

type AttemptDeps struct {
	Store    quiz.Store
	Grader   grading.Grader
	Sessions *quiz.SessionManager
	Events   quiz.EventRecorder
}

type attemptView struct {
	ID        string            `json:"id"`
	State     quiz.SessionState `json:"state"`
	Remaining int               `json:"remaining_sec"`
	Questions []quiz.Question   `json:"questions,omitempty"`
	Score     *int              `json:"score,omitempty"`
}

func viewOf(s *quiz.AttemptSession) attemptView {
	v := attemptView{ID: s.ID, State: s.State(), Remaining: s.Remaining()}
	if v.State == quiz.StateInProgress {
		v.Questions = s.Presented()
	}
	return v
}

// StartAttemptHandler opens a session for the calling trainee. An already
// completed quiz comes back submitted with the stored score; a missed one
// comes back expired and read-only.
func StartAttemptHandler(d AttemptDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ModuleID  string `json:"module_id"`
			QuizTitle string `json:"quiz_title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ModuleID == "" || req.QuizTitle == "" {
			http.Error(w, "module_id and quiz_title required", http.StatusBadRequest)
			return
		}
		traineeID := rbac.SubjectFromContext(r.Context())
		s, err := quiz.NewAttemptSession(r.Context(), d.Store, d.Grader,
			req.ModuleID, req.QuizTitle, traineeID, quiz.WithEventRecorder(d.Events))
		if err != nil {
			writeErr(w, err)
			return
		}
		d.Sessions.Put(s)
		writeJSON(w, http.StatusCreated, viewOf(s))
	}
}

func sessionFor(d AttemptDeps, w http.ResponseWriter, r *http.Request) (*quiz.AttemptSession, bool) {
	id := chi.URLParam(r, "attemptID")
	s, ok := d.Sessions.Get(id)
	if !ok {
		writeErr(w, &quiz.NotFoundError{Kind: "attempt", Key: id})
		return nil, false
	}
	if s.TraineeID != rbac.SubjectFromContext(r.Context()) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return s, true
}

func RecordAnswerHandler(d AttemptDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(d, w, r)
		if !ok {
			return
		}
		var req struct {
			QuestionIndex int    `json:"question_index"`
			Value         string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := s.RecordAnswer(req.QuestionIndex, req.Value); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func SubmitAttemptHandler(d AttemptDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(d, w, r)
		if !ok {
			return
		}
		score, err := s.Submit(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		v := viewOf(s)
		v.Score = &score
		writeJSON(w, http.StatusOK, v)
	}
}

func ReviewAttemptHandler(d AttemptDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(d, w, r)
		if !ok {
			return
		}
		items, err := s.Review()
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// CloseAttemptHandler abandons a session without grading; nothing is
// persisted.
func CloseAttemptHandler(d AttemptDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFor(d, w, r)
		if !ok {
			return
		}
		d.Sessions.Remove(s.ID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
	}
}
