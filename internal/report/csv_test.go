package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/skill-forge/skillforge-lms/internal/quiz"
)

func TestWriteTraineeCSV(t *testing.T) {
	modules := []quiz.Module{
		{ID: "m1", Name: "Math"},
		{ID: "m2", Name: "Physics"},
	}
	results := []quiz.QuizResult{
		res("a", "m1", "Math", "Q1", 80),
		res("a", "m2", "Physics", "Q1", 60),
		res("b", "m1", "Math", "Q1", 90),
	}
	profiles := []TraineeProfile{
		{ID: "a", Program: "CS", Role: "trainee"},
		{ID: "b", Program: "CS", Role: "trainee"},
	}

	var buf bytes.Buffer
	if err := WriteTraineeCSV(&buf, modules, results, "a", profiles, RankCompetition); err != nil {
		t.Fatalf("WriteTraineeCSV: %v", err)
	}

	cr := csv.NewReader(&buf)
	cr.FieldsPerRecord = -1 // summary rows are shorter
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	// Header + one row per module + average + program rank.
	if len(rows) != 2+len(modules)+2 {
		t.Fatalf("got %d rows: %v", len(rows), rows)
	}
	header := rows[0]
	if header[0] != "Module" || header[len(header)-1] != "Rank" {
		t.Fatalf("header = %v", header)
	}
	if rows[1][0] != "Math" || rows[2][0] != "Physics" {
		t.Fatalf("module rows = %v, %v", rows[1], rows[2])
	}
	// a trails b in Math.
	if got := rows[1][len(rows[1])-1]; got != "#2" {
		t.Fatalf("Math rank cell = %q, want #2", got)
	}
	// a totals 140 across both modules against b's 90.
	last := rows[len(rows)-1]
	if last[0] != "Program Rank" || last[1] != "#1" {
		t.Fatalf("program rank row = %v", last)
	}
	avgRow := rows[len(rows)-2]
	if avgRow[0] != "Average" || avgRow[1] != "70.0%" {
		t.Fatalf("average row = %v", avgRow)
	}
}

func TestWriteAdminCSV(t *testing.T) {
	rollup := Rollup{
		"Science": {
			"CS": []StudentRow{
				{Profile: TraineeProfile{FirstName: "Ana", LastName: "Diaz", Gender: "Female"},
					Marks: map[string]float64{"Math": 70}},
			},
		},
	}
	var buf bytes.Buffer
	if err := WriteAdminCSV(&buf, rollup, []string{"Math", "Physics"}); err != nil {
		t.Fatalf("WriteAdminCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	want := []string{"Science", "CS", "Ana Diaz", "Female", "70.0", "-"}
	for i, cell := range want {
		if rows[1][i] != cell {
			t.Fatalf("row = %v, want %v", rows[1], want)
		}
	}
}
