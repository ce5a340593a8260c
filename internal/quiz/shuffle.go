package quiz

import "math/rand"

// Shuffle returns a uniformly random permutation of in. The input slice is
// never mutated; a fresh copy is returned even for n <= 1.
func Shuffle[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// PresentationCopy builds the session-local view of a quiz: question order is
// shuffled once, each multiple_choice question's options are shuffled
// independently, and true_false questions get a shuffled True/False pair.
// When perTrainee > 0 only the first perTrainee questions of the shuffled
// order are kept. The stored definition is left untouched.
func PresentationCopy(def QuizDefinition, perTrainee int) []Question {
	qs := Shuffle(def.Questions)
	if perTrainee > 0 && perTrainee < len(qs) {
		qs = qs[:perTrainee]
	}
	for i, q := range qs {
		switch q.Type {
		case TypeMultipleChoice:
			qs[i].Options = Shuffle(q.Options)
		case TypeTrueFalse:
			qs[i].Options = Shuffle(TrueFalseOptions)
		}
	}
	return qs
}
