package quiz

import "time"

// Question types supported by the authoring and grading flows.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeShortAnswer    = "short_answer"
)

// TrueFalseOptions is the implicit option pair for true_false questions.
var TrueFalseOptions = []string{"True", "False"}

type Lecture struct {
	Name     string `json:"name"`
	Link     string `json:"link,omitempty"`
	AssetKey string `json:"asset_key,omitempty"` // blob key for uploaded material
}

type Module struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	EnrolmentKey string    `json:"enrolment_key"`
	Lectures     []Lecture `json:"lectures"`
	CreatedAt    int64     `json:"created_at,omitempty"`
}

type Question struct {
	Type    string   `json:"type"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"` // multiple_choice only
	Answer  string   `json:"answer"`            // compared case-insensitively, trimmed
}

// QuizDefinition is an authored quiz. Immutable once created; title is a
// natural key within its module.
type QuizDefinition struct {
	ID                  string     `json:"id"`
	ModuleID            string     `json:"module_id"`
	ModuleName          string     `json:"module_name,omitempty"`
	Title               string     `json:"title"`
	Schedule            time.Time  `json:"schedule"`
	Expiry              time.Time  `json:"expiry"`
	DurationMin         int        `json:"duration_min"`
	QuestionsPerTrainee int        `json:"questions_per_trainee,omitempty"` // 0 = all
	Questions           []Question `json:"questions"`
	CreatedAt           int64      `json:"created_at,omitempty"`
}

// QuizResult is one trainee's graded outcome for one quiz. At most one per
// (module, quiz title, trainee).
type QuizResult struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"module_id"`
	ModuleName  string    `json:"module_name,omitempty"`
	QuizTitle   string    `json:"quiz_title"`
	TraineeID   string    `json:"trainee_id"`
	Score       int       `json:"score"` // 0..100
	SubmittedAt time.Time `json:"submitted_at"`
	DurationMin int       `json:"duration_min"`
}

type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}
