package quiz

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventRecorder receives audit events after successful writes. Failures to
// record are not surfaced to callers.
type EventRecorder interface {
	Record(ctx context.Context, typ, key string, data any) error
}

// CreateQuizInput carries the authoring form. Scalar requirements live in
// the validate tags; cross-field and per-question rules are checked in
// CreateQuiz.
type CreateQuizInput struct {
	ModuleID            string     `json:"module_id" validate:"required"`
	Title               string     `json:"title" validate:"required"`
	Schedule            time.Time  `json:"schedule" validate:"required"`
	Expiry              time.Time  `json:"expiry" validate:"required"`
	DurationMin         int        `json:"duration_min" validate:"required,gt=0"`
	QuestionsPerTrainee int        `json:"questions_per_trainee" validate:"gte=0"`
	Questions           []Question `json:"questions" validate:"required,min=1"`
}

type AuthoringService struct {
	store    Store
	validate *validator.Validate
	events   EventRecorder
}

func NewAuthoringService(store Store, events EventRecorder) *AuthoringService {
	return &AuthoringService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		events:   events,
	}
}

// CreateQuiz validates the input and appends the definition to the target
// module in a single store write. On validation failure nothing is written;
// on store failure the module's quiz list is unchanged.
func (s *AuthoringService) CreateQuiz(ctx context.Context, in CreateQuizInput) (QuizDefinition, error) {
	if err := s.validate.Struct(in); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return QuizDefinition{}, &ValidationError{
				Field:  strings.ToLower(fe.Field()),
				Reason: "failed " + fe.Tag() + " check",
			}
		}
		return QuizDefinition{}, &ValidationError{Field: "input", Reason: err.Error()}
	}
	if !in.Schedule.Before(in.Expiry) {
		return QuizDefinition{}, &ValidationError{Field: "schedule", Reason: "schedule must be before expiry"}
	}
	if in.QuestionsPerTrainee > len(in.Questions) {
		return QuizDefinition{}, &ValidationError{Field: "questions_per_trainee", Reason: "larger than question list"}
	}
	for i, q := range in.Questions {
		if err := validateQuestion(i, q); err != nil {
			return QuizDefinition{}, err
		}
	}

	def := QuizDefinition{
		ModuleID:            in.ModuleID,
		Title:               strings.TrimSpace(in.Title),
		Schedule:            in.Schedule,
		Expiry:              in.Expiry,
		DurationMin:         in.DurationMin,
		QuestionsPerTrainee: in.QuestionsPerTrainee,
		Questions:           in.Questions,
	}
	created, err := s.store.AppendQuiz(ctx, def)
	if err != nil {
		if IsValidation(err) || IsNotFound(err) {
			return QuizDefinition{}, err
		}
		return QuizDefinition{}, &PersistenceError{Op: "append quiz", Err: err}
	}
	if s.events != nil {
		_ = s.events.Record(ctx, "quiz_created", created.ID, created)
	}
	return created, nil
}

func validateQuestion(i int, q Question) error {
	field := "questions[" + strconv.Itoa(i) + "]"
	if strings.TrimSpace(q.Prompt) == "" {
		return &ValidationError{Field: field, Reason: "prompt is required"}
	}
	if strings.TrimSpace(q.Answer) == "" {
		return &ValidationError{Field: field, Reason: "correct answer is required"}
	}
	switch q.Type {
	case TypeMultipleChoice:
		filled := 0
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) != "" {
				filled++
			}
		}
		if filled < 2 || filled != len(q.Options) {
			return &ValidationError{Field: field, Reason: "multiple choice needs at least 2 non-empty options"}
		}
	case TypeTrueFalse, TypeShortAnswer:
		// options are implicit or absent
	default:
		return &ValidationError{Field: field, Reason: "unknown question type " + q.Type}
	}
	return nil
}
