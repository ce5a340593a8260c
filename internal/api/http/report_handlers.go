package http

import (
	"context"
	"database/sql"
	"net/http"
	"sort"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
	"github.com/skill-forge/skillforge-lms/internal/rbac"
	"github.com/skill-forge/skillforge-lms/internal/report"
)

func loadProfiles(ctx context.Context, db *sql.DB) ([]report.TraineeProfile, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id,first_name,last_name,gender,faculty,program,role FROM users ORDER BY last_name,first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []report.TraineeProfile{}
	for rows.Next() {
		var p report.TraineeProfile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Gender, &p.Faculty, &p.Program, &p.Role); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// TraineeReportHandler is the trainee dashboard: per-module totals and
// ranks, overall average, program rank.
func TraineeReportHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traineeID := rbac.SubjectFromContext(ctx)

		results, err := store.ListResults(ctx, quiz.ResultFilter{})
		if err != nil {
			writeErr(w, err)
			return
		}
		modules, err := store.ListModules(ctx)
		if err != nil {
			writeErr(w, err)
			return
		}
		profiles, err := loadProfiles(ctx, db)
		if err != nil {
			writeErr(w, err)
			return
		}

		type moduleRow struct {
			ModuleID   string `json:"module_id"`
			ModuleName string `json:"module_name"`
			Total      int    `json:"total"`
			Rank       int    `json:"rank,omitempty"`
		}
		rows := make([]moduleRow, 0, len(modules))
		for _, m := range modules {
			row := moduleRow{ModuleID: m.ID, ModuleName: m.Name,
				Total: report.ModuleTotal(results, traineeID, m.ID)}
			if rank, ok := report.ModuleRank(results, traineeID, m.ID, report.RankCompetition); ok {
				row.Rank = rank
			}
			rows = append(rows, row)
		}
		body := map[string]any{
			"modules": rows,
			"average": report.Average(results, traineeID),
		}
		if rank, ok := report.ProgramRank(results, profiles, traineeID, report.RankCompetition); ok {
			body["program_rank"] = rank
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func TraineeExportHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		traineeID := rbac.SubjectFromContext(ctx)
		results, err := store.ListResults(ctx, quiz.ResultFilter{})
		if err != nil {
			writeErr(w, err)
			return
		}
		modules, err := store.ListModules(ctx)
		if err != nil {
			writeErr(w, err)
			return
		}
		profiles, err := loadProfiles(ctx, db)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trainee_results.csv"`)
		if err := report.WriteTraineeCSV(w, modules, results, traineeID, profiles, report.RankCompetition); err != nil {
			writeErr(w, err)
		}
	}
}

// AdminReportHandler is the faculty/program roll-up with per-module stats.
func AdminReportHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rollup, names, err := buildRollup(ctx, store, db)
		if err != nil {
			writeErr(w, err)
			return
		}
		type programBlock struct {
			Program  string                        `json:"program"`
			Students []report.StudentRow           `json:"students"`
			Stats    map[string]report.ModuleStats `json:"stats"`
		}
		out := map[string][]programBlock{}
		for faculty, programs := range rollup {
			for program, students := range programs {
				stats := map[string]report.ModuleStats{}
				for _, name := range names {
					stats[name] = report.StatsFor(students, name)
				}
				out[faculty] = append(out[faculty], programBlock{
					Program: program, Students: students, Stats: stats,
				})
			}
			sort.Slice(out[faculty], func(i, j int) bool {
				return out[faculty][i].Program < out[faculty][j].Program
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func AdminExportHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rollup, names, err := buildRollup(ctx, store, db)
		if err != nil {
			writeErr(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="student_performance.csv"`)
		if err := report.WriteAdminCSV(w, rollup, names); err != nil {
			writeErr(w, err)
		}
	}
}

func buildRollup(ctx context.Context, store quiz.Store, db *sql.DB) (report.Rollup, []string, error) {
	results, err := store.ListResults(ctx, quiz.ResultFilter{})
	if err != nil {
		return nil, nil, err
	}
	profiles, err := loadProfiles(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	modules, err := store.ListModules(ctx)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name)
	}
	return report.BuildRollup(results, profiles), names, nil
}
