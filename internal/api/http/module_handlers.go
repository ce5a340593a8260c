package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
	"github.com/skill-forge/skillforge-lms/internal/rbac"
)

func CreateModuleHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name         string `json:"name"`
			EnrolmentKey string `json:"enrolment_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.EnrolmentKey == "" {
			writeErr(w, &quiz.ValidationError{Field: "name", Reason: "name and enrolment_key are required"})
			return
		}
		m, err := store.CreateModule(r.Context(), quiz.Module{Name: req.Name, EnrolmentKey: req.EnrolmentKey})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

type quizSummary struct {
	Title       string      `json:"title"`
	ModuleID    string      `json:"module_id,omitempty"`
	ModuleName  string      `json:"module_name,omitempty"`
	Schedule    time.Time   `json:"schedule"`
	Expiry      time.Time   `json:"expiry"`
	DurationMin int         `json:"duration_min"`
	Status      quiz.Status `json:"status"`
}

type moduleView struct {
	quiz.Module
	Quizzes []quizSummary `json:"quizzes"`
}

// ListModulesHandler returns every module with its quizzes classified for
// the calling trainee (not started / active / missed / completed).
func ListModulesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traineeID := rbac.SubjectFromContext(ctx)
		mods, err := store.ListModules(ctx)
		if err != nil {
			writeErr(w, err)
			return
		}
		now := time.Now()
		out := make([]moduleView, 0, len(mods))
		for _, m := range mods {
			defs, err := store.ListQuizzes(ctx, m.ID)
			if err != nil {
				writeErr(w, err)
				return
			}
			view := moduleView{Module: m, Quizzes: []quizSummary{}}
			for _, def := range defs {
				_, done, err := store.FindResult(ctx, def.ModuleID, def.Title, traineeID)
				if err != nil {
					writeErr(w, err)
					return
				}
				view.Quizzes = append(view.Quizzes, quizSummary{
					Title:       def.Title,
					Schedule:    def.Schedule,
					Expiry:      def.Expiry,
					DurationMin: def.DurationMin,
					Status:      quiz.WindowFor(def).Classify(now, done),
				})
			}
			out = append(out, view)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func DeleteModuleHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "moduleID")
		if err := store.DeleteModule(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func AddLectureHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "moduleID")
		var lec quiz.Lecture
		if err := json.NewDecoder(r.Body).Decode(&lec); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if lec.Name == "" {
			writeErr(w, &quiz.ValidationError{Field: "name", Reason: "lecture name is required"})
			return
		}
		if err := store.AppendLecture(r.Context(), id, lec); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
