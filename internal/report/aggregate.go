// Package report computes dashboard aggregates from persisted quiz results
// and trainee profiles. Everything here is pure: callers load the records,
// these functions only reduce them.
package report

import (
	"sort"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

type TraineeProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Faculty   string `json:"faculty"`
	Program   string `json:"program"`
	Role      string `json:"role"`
}

func (p TraineeProfile) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// ModuleTotal sums a trainee's scores within one module.
func ModuleTotal(results []quiz.QuizResult, traineeID, moduleID string) int {
	total := 0
	for _, r := range results {
		if r.TraineeID == traineeID && r.ModuleID == moduleID {
			total += r.Score
		}
	}
	return total
}

// Average is the mean of all of a trainee's scores, 0 with no results.
func Average(results []quiz.QuizResult, traineeID string) float64 {
	sum, n := 0, 0
	for _, r := range results {
		if r.TraineeID == traineeID {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// TraineeTotal is one trainee's summed score within a ranking scope.
type TraineeTotal struct {
	TraineeID string `json:"trainee_id"`
	Total     int    `json:"total"`
}

// RankPolicy selects the tie handling. Ordinal reproduces the source
// behavior (first encountered in the descending sort wins); Competition
// gives equal totals the same rank, which is what the dashboards use.
type RankPolicy int

const (
	RankOrdinal RankPolicy = iota
	RankCompetition
)

// Totals sums scores per trainee over the results that pass keep (nil keeps
// all), sorted by total descending. The sort is stable so equal totals keep
// their accumulation order.
func Totals(results []quiz.QuizResult, keep func(quiz.QuizResult) bool) []TraineeTotal {
	byTrainee := map[string]int{}
	var order []string
	for _, r := range results {
		if keep != nil && !keep(r) {
			continue
		}
		if _, seen := byTrainee[r.TraineeID]; !seen {
			order = append(order, r.TraineeID)
		}
		byTrainee[r.TraineeID] += r.Score
	}
	out := make([]TraineeTotal, 0, len(order))
	for _, id := range order {
		out = append(out, TraineeTotal{TraineeID: id, Total: byTrainee[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// Rank reports the 1-based position of traineeID in the descending totals,
// false if the trainee has no total in scope.
func Rank(totals []TraineeTotal, traineeID string, policy RankPolicy) (int, bool) {
	for i, t := range totals {
		if t.TraineeID != traineeID {
			continue
		}
		if policy == RankOrdinal {
			return i + 1, true
		}
		rank := 1
		for _, other := range totals {
			if other.Total > t.Total {
				rank++
			}
		}
		return rank, true
	}
	return 0, false
}

// ProgramRank ranks the trainee against peers in the same program.
func ProgramRank(results []quiz.QuizResult, profiles []TraineeProfile, traineeID string, policy RankPolicy) (int, bool) {
	var program string
	inProgram := map[string]bool{}
	for _, p := range profiles {
		if p.ID == traineeID {
			program = p.Program
		}
	}
	for _, p := range profiles {
		if p.Program == program {
			inProgram[p.ID] = true
		}
	}
	totals := Totals(results, func(r quiz.QuizResult) bool { return inProgram[r.TraineeID] })
	return Rank(totals, traineeID, policy)
}

// ModuleRank ranks the trainee within one module's results.
func ModuleRank(results []quiz.QuizResult, traineeID, moduleID string, policy RankPolicy) (int, bool) {
	totals := Totals(results, func(r quiz.QuizResult) bool { return r.ModuleID == moduleID })
	return Rank(totals, traineeID, policy)
}

// StudentRow is one trainee in the admin roll-up: averaged score per module
// name. A module absent from Marks was never attempted.
type StudentRow struct {
	Profile TraineeProfile     `json:"profile"`
	Marks   map[string]float64 `json:"marks"`
}

// ModuleStats summarizes one module across a program cohort. Best pointers
// are nil when no student has a positive mark (no-candidates sentinel); ties
// go to the first student encountered.
type ModuleStats struct {
	Average    float64     `json:"average"`
	Passed     int         `json:"passed"`    // mark >= 50
	Failed     int         `json:"failed"`    // 0 < mark < 50
	Excellent  int         `json:"excellent"` // mark >= 80
	Best       *StudentRow `json:"best,omitempty"`
	BestMale   *StudentRow `json:"best_male,omitempty"`
	BestFemale *StudentRow `json:"best_female,omitempty"`
}

// Rollup groups trainees by faculty, then program.
type Rollup map[string]map[string][]StudentRow

// BuildRollup averages each trainee's scores per module name and slots them
// under faculty/program. Non-trainee profiles are skipped.
func BuildRollup(results []quiz.QuizResult, profiles []TraineeProfile) Rollup {
	type key struct{ trainee, module string }
	sums := map[key]int{}
	counts := map[key]int{}
	for _, r := range results {
		k := key{r.TraineeID, r.ModuleName}
		sums[k] += r.Score
		counts[k]++
	}

	moduleNames := map[string]bool{}
	for _, r := range results {
		moduleNames[r.ModuleName] = true
	}

	out := Rollup{}
	for _, p := range profiles {
		if p.Role != "trainee" {
			continue
		}
		marks := map[string]float64{}
		for name := range moduleNames {
			k := key{p.ID, name}
			if counts[k] > 0 {
				marks[name] = float64(sums[k]) / float64(counts[k])
			}
		}
		if out[p.Faculty] == nil {
			out[p.Faculty] = map[string][]StudentRow{}
		}
		out[p.Faculty][p.Program] = append(out[p.Faculty][p.Program], StudentRow{Profile: p, Marks: marks})
	}
	for _, programs := range out {
		for _, rows := range programs {
			sort.SliceStable(rows, func(i, j int) bool {
				return rows[i].Profile.FullName() < rows[j].Profile.FullName()
			})
		}
	}
	return out
}

// StatsFor reduces one module over a cohort. Only positive marks count as
// attempts, matching the dashboard the trainers already use.
func StatsFor(students []StudentRow, moduleName string) ModuleStats {
	var stats ModuleStats
	sum, n := 0.0, 0
	for i := range students {
		mark, ok := students[i].Marks[moduleName]
		if !ok || mark <= 0 {
			continue
		}
		sum += mark
		n++
		if mark >= 50 {
			stats.Passed++
		} else {
			stats.Failed++
		}
		if mark >= 80 {
			stats.Excellent++
		}
		stats.Best = maxByMark(stats.Best, &students[i], moduleName)
		switch students[i].Profile.Gender {
		case "Male":
			stats.BestMale = maxByMark(stats.BestMale, &students[i], moduleName)
		case "Female":
			stats.BestFemale = maxByMark(stats.BestFemale, &students[i], moduleName)
		}
	}
	if n > 0 {
		stats.Average = sum / float64(n)
	}
	return stats
}

// maxByMark keeps the current best on ties, so the first encountered wins.
func maxByMark(cur, cand *StudentRow, moduleName string) *StudentRow {
	if cur == nil {
		return cand
	}
	if cand.Marks[moduleName] > cur.Marks[moduleName] {
		return cand
	}
	return cur
}
