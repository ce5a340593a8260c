package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/skill-forge/skillforge-lms/internal/api/http"
	"github.com/skill-forge/skillforge-lms/internal/auth"
	"github.com/skill-forge/skillforge-lms/internal/config"
	"github.com/skill-forge/skillforge-lms/internal/db"
	"github.com/skill-forge/skillforge-lms/internal/grading"
	"github.com/skill-forge/skillforge-lms/internal/quiz"
	"github.com/skill-forge/skillforge-lms/internal/rbac"
	"github.com/skill-forge/skillforge-lms/internal/storage"
	syncx "github.com/skill-forge/skillforge-lms/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	// --- Services ---
	tokens := auth.NewTokenService(cfg.AuthSecret)
	authSvc := auth.NewService(dbh, tokens, auth.ConsoleMailer{BaseURL: cfg.PublicURL})
	authoring := quiz.NewAuthoringService(store, events)
	grader := grading.NewDefaultGrader()
	sessions := quiz.NewSessionManager()
	attempts := api.AttemptDeps{Store: store, Grader: grader, Sessions: sessions, Events: events}

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public auth surface
	r.Post("/auth/signup", api.SignupHandler(authSvc))
	r.Post("/auth/login", api.LoginHandler(authSvc))
	r.Post("/auth/verify/resend", api.ResendVerificationHandler(authSvc))
	r.Get("/auth/verify", api.VerifyHandler(authSvc))

	// Protected API (JWT -> role from DB -> permission checks)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(tokens))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.DevClaimRole))

		// Admin: module management and quiz authoring
		pr.With(rbac.Require("module:create")).
			Post("/modules", api.CreateModuleHandler(store))
		pr.With(rbac.Require("module:delete")).
			Delete("/modules/{moduleID}", api.DeleteModuleHandler(store))
		pr.With(rbac.Require("lecture:create")).
			Post("/modules/{moduleID}/lectures", api.AddLectureHandler(store))
		pr.With(rbac.Require("quiz:create")).
			Post("/modules/{moduleID}/quizzes", api.CreateQuizHandler(authoring))

		// Shared reads
		pr.With(rbac.Require("module:view")).
			Get("/modules", api.ListModulesHandler(store))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/upcoming", api.UpcomingQuizzesHandler(store))

		// Trainee attempt flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.StartAttemptHandler(attempts))
		pr.With(rbac.Require("attempt:answer")).
			Post("/attempts/{attemptID}/answers", api.RecordAnswerHandler(attempts))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(attempts))
		pr.With(rbac.Require("attempt:review")).
			Get("/attempts/{attemptID}/review", api.ReviewAttemptHandler(attempts))
		pr.With(rbac.Require("attempt:create")).
			Delete("/attempts/{attemptID}", api.CloseAttemptHandler(attempts))

		// Dashboards
		pr.With(rbac.Require("report:view-own")).
			Get("/reports/me", api.TraineeReportHandler(store, dbh))
		pr.With(rbac.Require("report:view-own")).
			Get("/reports/me/export", api.TraineeExportHandler(store, dbh))
		pr.With(rbac.Require("report:view-all")).
			Get("/reports/admin", api.AdminReportHandler(store, dbh))
		pr.With(rbac.Require("report:view-all")).
			Get("/reports/admin/export", api.AdminExportHandler(store, dbh))

		// Announcements
		pr.With(rbac.Require("announcement:create")).
			Post("/announcements", api.CreateAnnouncementHandler(store))
		pr.With(rbac.Require("announcement:view")).
			Get("/announcements", api.ListAnnouncementsHandler(store))
		pr.With(rbac.Require("announcement:delete")).
			Delete("/announcements/{announcementID}", api.DeleteAnnouncementHandler(store))

		// Lecture materials
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
