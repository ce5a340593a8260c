package report

import (
	"testing"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

func res(trainee, moduleID, moduleName, title string, score int) quiz.QuizResult {
	return quiz.QuizResult{
		TraineeID: trainee, ModuleID: moduleID, ModuleName: moduleName,
		QuizTitle: title, Score: score,
	}
}

func TestModuleTotalAndAverage(t *testing.T) {
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 80),
		res("a", "m1", "Math", "Q2", 60),
		res("a", "m2", "Physics", "Q1", 90),
		res("b", "m1", "Math", "Q1", 50),
	}

	if got := ModuleTotal(results, "a", "m1"); got != 140 {
		t.Fatalf("ModuleTotal = %d, want 140", got)
	}
	if got := ModuleTotal(results, "a", "m3"); got != 0 {
		t.Fatalf("ModuleTotal for unattempted module = %d, want 0", got)
	}
	if got := Average(results, "a"); got != float64(80+60+90)/3 {
		t.Fatalf("Average = %v", got)
	}
	if got := Average(results, "nobody"); got != 0 {
		t.Fatalf("Average with no results = %v, want 0", got)
	}
}

func TestRankPolicies(t *testing.T) {
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 90),
		res("b", "m1", "Math", "Q1", 90),
		res("c", "m1", "Math", "Q1", 70),
	}
	totals := Totals(results, nil)
	if len(totals) != 3 {
		t.Fatalf("totals = %+v", totals)
	}
	if totals[0].TraineeID != "a" || totals[1].TraineeID != "b" {
		t.Fatalf("stable order broken: %+v", totals)
	}

	cases := []struct {
		trainee string
		policy  RankPolicy
		want    int
	}{
		{"a", RankOrdinal, 1},
		{"b", RankOrdinal, 2},
		{"c", RankOrdinal, 3},
		{"a", RankCompetition, 1},
		{"b", RankCompetition, 1},
		{"c", RankCompetition, 3},
	}
	for _, tc := range cases {
		got, ok := Rank(totals, tc.trainee, tc.policy)
		if !ok || got != tc.want {
			t.Errorf("Rank(%s, policy=%d) = %d ok=%v, want %d", tc.trainee, tc.policy, got, ok, tc.want)
		}
	}

	if _, ok := Rank(totals, "missing", RankCompetition); ok {
		t.Fatal("rank reported for trainee with no results")
	}
}

func TestTotalsSumsDuplicates(t *testing.T) {
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 40),
		res("a", "m1", "Math", "Q2", 30),
		res("b", "m1", "Math", "Q1", 60),
	}
	totals := Totals(results, nil)
	if totals[0].TraineeID != "a" || totals[0].Total != 70 {
		t.Fatalf("totals[0] = %+v, want a with 70", totals[0])
	}
}

func TestProgramRank(t *testing.T) {
	profiles := []TraineeProfile{
		{ID: "a", Program: "CS", Role: "trainee"},
		{ID: "b", Program: "CS", Role: "trainee"},
		{ID: "c", Program: "EE", Role: "trainee"},
	}
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 60),
		res("b", "m1", "Math", "Q1", 90),
		res("c", "m1", "Math", "Q1", 100),
	}

	// c's 100 is in another program and must not push a down.
	got, ok := ProgramRank(results, profiles, "a", RankCompetition)
	if !ok || got != 2 {
		t.Fatalf("ProgramRank(a) = %d ok=%v, want 2", got, ok)
	}
	got, ok = ProgramRank(results, profiles, "b", RankCompetition)
	if !ok || got != 1 {
		t.Fatalf("ProgramRank(b) = %d ok=%v, want 1", got, ok)
	}
}

func TestBuildRollup(t *testing.T) {
	profiles := []TraineeProfile{
		{ID: "a", FirstName: "Ana", LastName: "Diaz", Gender: "Female", Faculty: "Science", Program: "CS", Role: "trainee"},
		{ID: "b", FirstName: "Ben", LastName: "Okoro", Gender: "Male", Faculty: "Science", Program: "CS", Role: "trainee"},
		{ID: "admin", FirstName: "Root", LastName: "", Faculty: "Science", Program: "CS", Role: "admin"},
	}
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 80),
		res("a", "m1", "Math", "Q2", 60),
		res("b", "m1", "Math", "Q1", 40),
	}

	rollup := BuildRollup(results, profiles)
	students := rollup["Science"]["CS"]
	if len(students) != 2 {
		t.Fatalf("cohort has %d students, want 2 (admin excluded)", len(students))
	}
	// Sorted by full name: Ana Diaz before Ben Okoro.
	if students[0].Profile.ID != "a" || students[1].Profile.ID != "b" {
		t.Fatalf("cohort order: %s, %s", students[0].Profile.ID, students[1].Profile.ID)
	}
	if got := students[0].Marks["Math"]; got != 70 {
		t.Fatalf("a's Math mark = %v, want mean 70", got)
	}
	if _, ok := students[0].Marks["Physics"]; ok {
		t.Fatal("unattempted module present in marks")
	}
}

func TestStatsFor(t *testing.T) {
	students := []StudentRow{
		{Profile: TraineeProfile{ID: "a", FirstName: "Ana", Gender: "Female"}, Marks: map[string]float64{"Math": 85}},
		{Profile: TraineeProfile{ID: "b", FirstName: "Ben", Gender: "Male"}, Marks: map[string]float64{"Math": 45}},
		{Profile: TraineeProfile{ID: "c", FirstName: "Cam", Gender: "Male"}, Marks: map[string]float64{"Math": 85}},
		{Profile: TraineeProfile{ID: "d", FirstName: "Dee", Gender: "Female"}, Marks: map[string]float64{}},
	}

	stats := StatsFor(students, "Math")
	if stats.Passed != 2 || stats.Failed != 1 || stats.Excellent != 2 {
		t.Fatalf("passed=%d failed=%d excellent=%d", stats.Passed, stats.Failed, stats.Excellent)
	}
	if want := (85.0 + 45.0 + 85.0) / 3; stats.Average != want {
		t.Fatalf("average = %v, want %v", stats.Average, want)
	}
	// Tie on 85: first encountered wins.
	if stats.Best == nil || stats.Best.Profile.ID != "a" {
		t.Fatalf("best = %+v, want a", stats.Best)
	}
	if stats.BestFemale == nil || stats.BestFemale.Profile.ID != "a" {
		t.Fatalf("best female = %+v, want a", stats.BestFemale)
	}
	if stats.BestMale == nil || stats.BestMale.Profile.ID != "c" {
		t.Fatalf("best male = %+v, want c", stats.BestMale)
	}
}

func TestStatsForNoAttempts(t *testing.T) {
	students := []StudentRow{
		{Profile: TraineeProfile{ID: "a"}, Marks: map[string]float64{}},
		{Profile: TraineeProfile{ID: "b"}, Marks: map[string]float64{"Math": 0}},
	}
	stats := StatsFor(students, "Math")
	if stats.Best != nil || stats.BestMale != nil || stats.BestFemale != nil {
		t.Fatalf("best pointers set with no positive marks: %+v", stats)
	}
	if stats.Average != 0 || stats.Passed != 0 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want zeros", stats)
	}
}
