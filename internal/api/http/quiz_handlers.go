package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

func CreateQuizHandler(authoring *quiz.AuthoringService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in quiz.CreateQuizInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		in.ModuleID = chi.URLParam(r, "moduleID")
		def, err := authoring.CreateQuiz(r.Context(), in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, def)
	}
}

// UpcomingQuizzesHandler lists quizzes whose window touches the next seven
// days, soonest first.
func UpcomingQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs, err := store.ListAllQuizzes(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		now := time.Now()
		horizon := now.Add(7 * 24 * time.Hour)
		out := []quizSummary{}
		for _, def := range defs {
			if def.Schedule.After(horizon) || def.Expiry.Before(now) {
				continue
			}
			out = append(out, quizSummary{
				Title:       def.Title,
				ModuleID:    def.ModuleID,
				ModuleName:  def.ModuleName,
				Schedule:    def.Schedule,
				Expiry:      def.Expiry,
				DurationMin: def.DurationMin,
				Status:      quiz.WindowFor(def).Classify(now, false),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
