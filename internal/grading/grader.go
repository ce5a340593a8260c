package grading

import (
	"context"
	"fmt"
)

// Q is the minimal view of a question needed for grading. Keep this in sync
// with the quiz package's Question fields.
type Q struct {
	Type   string
	Answer string
}

// Result is the outcome of grading a single response.
type Result struct {
	Correct bool
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(ctx context.Context, q Q, response string) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response string) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{}, fmt.Errorf("no grading strategy for type %q", q.Type)
	}
	return s.Grade(ctx, q, response)
}

// NewDefaultGrader installs the built-in strategies. All three question
// types grade the same way: normalized exact match against the stored
// answer.
func NewDefaultGrader() Grader {
	exact := exactMatchStrategy{}
	return &defaultGrader{
		strategies: map[string]Strategy{
			"multiple_choice": exact,
			"true_false":      exact,
			"short_answer":    exact,
		},
	}
}

type exactMatchStrategy struct{}

func (exactMatchStrategy) Grade(_ context.Context, q Q, response string) (Result, error) {
	return Result{Correct: Normalize(response) == Normalize(q.Answer)}, nil
}

// ScorePercent converts a correct count into the 0..100 integer score,
// rounding half away from zero. A quiz with no questions scores 0.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int((float64(correct)/float64(total))*100 + 0.5)
}
