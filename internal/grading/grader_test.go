package grading

import (
	"context"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Paris", "paris"},
		{"  Paris  ", "paris"},
		{"\tTRUE\n", "true"},
		{"", ""},
		{"  ", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGradeExactMatch(t *testing.T) {
	g := NewDefaultGrader()
	ctx := context.Background()

	cases := []struct {
		name     string
		q        Q
		response string
		correct  bool
	}{
		{"exact", Q{Type: "short_answer", Answer: "osmosis"}, "osmosis", true},
		{"case folded", Q{Type: "short_answer", Answer: "Osmosis"}, "OSMOSIS", true},
		{"trimmed", Q{Type: "short_answer", Answer: "osmosis"}, "  osmosis ", true},
		{"wrong", Q{Type: "short_answer", Answer: "osmosis"}, "diffusion", false},
		{"blank response", Q{Type: "short_answer", Answer: "osmosis"}, "", false},
		{"true_false", Q{Type: "true_false", Answer: "True"}, "true", true},
		{"multiple_choice", Q{Type: "multiple_choice", Answer: "B"}, "b", true},
		{"substring is not a match", Q{Type: "short_answer", Answer: "osmosis"}, "osmo", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := g.Grade(ctx, tc.q, tc.response)
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if res.Correct != tc.correct {
				t.Fatalf("Correct = %v, want %v", res.Correct, tc.correct)
			}
		})
	}
}

func TestGradeUnknownType(t *testing.T) {
	g := NewDefaultGrader()
	if _, err := g.Grade(context.Background(), Q{Type: "essay", Answer: "x"}, "x"); err == nil {
		t.Fatal("expected error for unknown question type")
	}
}

func TestScorePercent(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 67}, // rounds half up
		{1, 2, 50},
		{1, 8, 13},
		{0, 0, 0},
		{3, 0, 0},
	}
	for _, tc := range cases {
		if got := ScorePercent(tc.correct, tc.total); got != tc.want {
			t.Errorf("ScorePercent(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
		}
	}
}
