package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

// WriteTraineeCSV renders one trainee's score matrix: a row per module with
// each quiz title's score, the module total and the module rank, then
// summary rows for the overall average and program rank.
func WriteTraineeCSV(w io.Writer, modules []quiz.Module, results []quiz.QuizResult, traineeID string, profiles []TraineeProfile, policy RankPolicy) error {
	var mine []quiz.QuizResult
	for _, r := range results {
		if r.TraineeID == traineeID {
			mine = append(mine, r)
		}
	}
	titles := quizTitles(mine)

	cw := csv.NewWriter(w)
	header := append([]string{"Module"}, titles...)
	header = append(header, "Total", "Rank")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, m := range modules {
		row := []string{m.Name}
		for _, title := range titles {
			row = append(row, strconv.Itoa(scoreFor(mine, m.ID, title)))
		}
		row = append(row, strconv.Itoa(ModuleTotal(mine, traineeID, m.ID)))
		if rank, ok := ModuleRank(results, traineeID, m.ID, policy); ok {
			row = append(row, "#"+strconv.Itoa(rank))
		} else {
			row = append(row, "-")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	avg := fmt.Sprintf("%.1f%%", Average(results, traineeID))
	if err := cw.Write([]string{"Average", avg}); err != nil {
		return err
	}
	rankCell := "-"
	if rank, ok := ProgramRank(results, profiles, traineeID, policy); ok {
		rankCell = "#" + strconv.Itoa(rank)
	}
	if err := cw.Write([]string{"Program Rank", rankCell}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteAdminCSV renders the faculty/program performance sheet: one row per
// trainee with the averaged mark per module.
func WriteAdminCSV(w io.Writer, rollup Rollup, moduleNames []string) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Faculty", "Program", "Student", "Gender"}, moduleNames...)
	if err := cw.Write(header); err != nil {
		return err
	}

	faculties := make([]string, 0, len(rollup))
	for f := range rollup {
		faculties = append(faculties, f)
	}
	sort.Strings(faculties)
	for _, faculty := range faculties {
		programs := make([]string, 0, len(rollup[faculty]))
		for p := range rollup[faculty] {
			programs = append(programs, p)
		}
		sort.Strings(programs)
		for _, program := range programs {
			for _, s := range rollup[faculty][program] {
				row := []string{faculty, program, s.Profile.FullName(), s.Profile.Gender}
				for _, name := range moduleNames {
					if mark, ok := s.Marks[name]; ok {
						row = append(row, fmt.Sprintf("%.1f", mark))
					} else {
						row = append(row, "-")
					}
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func quizTitles(results []quiz.QuizResult) []string {
	seen := map[string]bool{}
	var titles []string
	for _, r := range results {
		if !seen[r.QuizTitle] {
			seen[r.QuizTitle] = true
			titles = append(titles, r.QuizTitle)
		}
	}
	return titles
}

func scoreFor(results []quiz.QuizResult, moduleID, title string) int {
	for _, r := range results {
		if r.ModuleID == moduleID && r.QuizTitle == title {
			return r.Score
		}
	}
	return 0
}
