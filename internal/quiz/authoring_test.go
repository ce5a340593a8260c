package quiz

import (
	"context"
	"testing"
	"time"
)

func seedModule(t *testing.T, store Store) Module {
	t.Helper()
	mod, err := store.CreateModule(context.Background(), Module{Name: "Networking", EnrolmentKey: "net101"})
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	return mod
}

func validInput(moduleID string) CreateQuizInput {
	schedule := time.Now().Add(time.Hour)
	return CreateQuizInput{
		ModuleID:    moduleID,
		Title:       "Quiz 1",
		Schedule:    schedule,
		Expiry:      schedule.Add(2 * time.Hour),
		DurationMin: 30,
		Questions: []Question{
			{Type: TypeShortAnswer, Prompt: "What does TCP stand for?", Answer: "transmission control protocol"},
			{Type: TypeTrueFalse, Prompt: "UDP is connection oriented.", Answer: "False"},
		},
	}
}

func TestCreateQuiz(t *testing.T) {
	store := NewInMemoryStore()
	mod := seedModule(t, store)
	svc := NewAuthoringService(store, nil)

	def, err := svc.CreateQuiz(context.Background(), validInput(mod.ID))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if def.ID == "" {
		t.Fatal("created quiz has no ID")
	}
	if def.ModuleName != mod.Name {
		t.Fatalf("ModuleName = %q, want %q", def.ModuleName, mod.Name)
	}

	got, err := store.GetQuiz(context.Background(), mod.ID, "Quiz 1")
	if err != nil {
		t.Fatalf("GetQuiz after create: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("stored %d questions, want 2", len(got.Questions))
	}
}

func TestCreateQuizValidation(t *testing.T) {
	store := NewInMemoryStore()
	mod := seedModule(t, store)
	svc := NewAuthoringService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateQuizInput)
	}{
		{"missing title", func(in *CreateQuizInput) { in.Title = "" }},
		{"zero duration", func(in *CreateQuizInput) { in.DurationMin = 0 }},
		{"no questions", func(in *CreateQuizInput) { in.Questions = nil }},
		{"schedule equals expiry", func(in *CreateQuizInput) { in.Expiry = in.Schedule }},
		{"schedule after expiry", func(in *CreateQuizInput) { in.Expiry = in.Schedule.Add(-time.Minute) }},
		{"per-trainee over question count", func(in *CreateQuizInput) { in.QuestionsPerTrainee = 5 }},
		{"question without prompt", func(in *CreateQuizInput) { in.Questions[0].Prompt = "   " }},
		{"question without answer", func(in *CreateQuizInput) { in.Questions[0].Answer = "" }},
		{"unknown question type", func(in *CreateQuizInput) { in.Questions[0].Type = "essay" }},
		{"multiple choice single option", func(in *CreateQuizInput) {
			in.Questions[0] = Question{Type: TypeMultipleChoice, Prompt: "p", Options: []string{"a"}, Answer: "a"}
		}},
		{"multiple choice blank option", func(in *CreateQuizInput) {
			in.Questions[0] = Question{Type: TypeMultipleChoice, Prompt: "p", Options: []string{"a", " "}, Answer: "a"}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(mod.ID)
			tc.mutate(&in)
			if _, err := svc.CreateQuiz(ctx, in); !IsValidation(err) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	// Nothing may have been written by the rejected inputs.
	defs, err := store.ListQuizzes(ctx, mod.ID)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(defs) != 0 {
		t.Fatalf("rejected input reached the store: %d quizzes", len(defs))
	}
}

func TestCreateQuizDuplicateTitle(t *testing.T) {
	store := NewInMemoryStore()
	mod := seedModule(t, store)
	svc := NewAuthoringService(store, nil)
	ctx := context.Background()

	if _, err := svc.CreateQuiz(ctx, validInput(mod.ID)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateQuiz(ctx, validInput(mod.ID)); !IsValidation(err) {
		t.Fatalf("duplicate title: err = %v, want ValidationError", err)
	}
	defs, _ := store.ListQuizzes(ctx, mod.ID)
	if len(defs) != 1 {
		t.Fatalf("module has %d quizzes, want 1", len(defs))
	}
}

func TestCreateQuizUnknownModule(t *testing.T) {
	store := NewInMemoryStore()
	svc := NewAuthoringService(store, nil)
	if _, err := svc.CreateQuiz(context.Background(), validInput("missing")); !IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}
