package quiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skill-forge/skillforge-lms/internal/grading"
)

// Session states. Loading is not represented: NewAttemptSession returns only
// once the definition is fetched and classified.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateExpired    SessionState = "expired"
	StateSubmitted  SessionState = "submitted"
)

var (
	ErrNotInProgress    = errors.New("attempt is not in progress")
	ErrNotSubmitted     = errors.New("attempt is not submitted yet")
	ErrQuestionIndex    = errors.New("question index out of range")
	ErrSubmitNotAllowed = errors.New("attempt cannot be submitted in its current state")
)

// ReviewItem pairs a presented question with the trainee's answer and its
// correctness, for the post-submit review screen.
type ReviewItem struct {
	Question Question `json:"question"`
	Given    string   `json:"given"`
	Correct  bool     `json:"correct"`
}

// AttemptSession orchestrates one trainee's run at one quiz: it owns the
// shuffled presentation copy, the countdown, answer capture, grading and the
// single result write. The timer callback and the user-facing Submit race
// through the same mutex, so double submission is a no-op.
type AttemptSession struct {
	ID        string
	TraineeID string

	store  Store
	grader grading.Grader
	events EventRecorder
	now    func() time.Time

	mu        sync.Mutex
	def       QuizDefinition
	window    Window
	presented []Question
	answers   map[int]string
	state     SessionState
	score     int
	timer     *time.Timer
}

// SessionOption tweaks session construction; used by tests to pin the clock.
type SessionOption func(*AttemptSession)

func WithClock(now func() time.Time) SessionOption {
	return func(s *AttemptSession) { s.now = now }
}

func WithEventRecorder(ev EventRecorder) SessionOption {
	return func(s *AttemptSession) { s.events = ev }
}

// NewAttemptSession loads the quiz by module and title, builds the
// presentation copy and classifies the window. A quiz the trainee already
// completed comes back in StateSubmitted carrying the stored score; the
// stored definition is never mutated by the shuffle.
func NewAttemptSession(ctx context.Context, store Store, grader grading.Grader, moduleID, title, traineeID string, opts ...SessionOption) (*AttemptSession, error) {
	s := &AttemptSession{
		ID:        uuid.NewString(),
		TraineeID: traineeID,
		store:     store,
		grader:    grader,
		now:       time.Now,
		answers:   map[int]string{},
	}
	for _, o := range opts {
		o(s)
	}

	def, err := store.GetQuiz(ctx, moduleID, title)
	if err != nil {
		if IsNotFound(err) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "load quiz", Err: err}
	}
	s.def = def
	s.window = WindowFor(def)
	s.presented = PresentationCopy(def, def.QuestionsPerTrainee)

	prior, found, err := store.FindResult(ctx, def.ModuleID, def.Title, traineeID)
	if err != nil {
		return nil, &PersistenceError{Op: "check prior result", Err: err}
	}

	switch s.window.Classify(s.now(), found) {
	case StatusNotStarted:
		s.state = StateNotStarted
	case StatusCompleted:
		s.state = StateSubmitted
		s.score = prior.Score
	case StatusMissed:
		s.state = StateExpired
	default:
		s.state = StateInProgress
		// Timer path: auto-submit when the countdown hits zero. Shares
		// Submit with the explicit path.
		remaining := time.Duration(s.window.Remaining(s.now())) * time.Second
		s.timer = time.AfterFunc(remaining, func() {
			_, _ = s.Submit(context.Background())
		})
	}
	return s, nil
}

func (s *AttemptSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining reports whole seconds left in the window, 0 once closed.
func (s *AttemptSession) Remaining() int {
	return s.window.Remaining(s.now())
}

// Presented returns the session-local question order with answers stripped,
// for rendering.
func (s *AttemptSession) Presented() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Question, len(s.presented))
	copy(out, s.presented)
	for i := range out {
		out[i].Answer = ""
	}
	return out
}

func (s *AttemptSession) Quiz() QuizDefinition { return s.def }

// RecordAnswer overwrites any prior answer for the question at index i.
// Allowed only while in progress.
func (s *AttemptSession) RecordAnswer(i int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrNotInProgress
	}
	if i < 0 || i >= len(s.presented) {
		return ErrQuestionIndex
	}
	s.answers[i] = value
	return nil
}

// Submit grades the attempt and persists the result exactly once. Safe to
// call from the countdown timer and a user action racing each other: the
// second caller observes StateSubmitted and gets the same score back. When a
// result already exists in the store (another tab, a reload) the stored
// score is adopted without regrading.
func (s *AttemptSession) Submit(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitted:
		return s.score, nil
	case StateInProgress:
	default:
		return 0, ErrSubmitNotAllowed
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	prior, found, err := s.store.FindResult(ctx, s.def.ModuleID, s.def.Title, s.TraineeID)
	if err != nil {
		return 0, &PersistenceError{Op: "check prior result", Err: err}
	}
	if found {
		s.state = StateSubmitted
		s.score = prior.Score
		return s.score, nil
	}

	correct := 0
	for i, q := range s.presented {
		res, err := s.grader.Grade(ctx, grading.Q{Type: q.Type, Answer: q.Answer}, s.answers[i])
		if err != nil {
			continue
		}
		if res.Correct {
			correct++
		}
	}
	score := grading.ScorePercent(correct, len(s.presented))

	saved, err := s.store.SaveResult(ctx, QuizResult{
		ModuleID:    s.def.ModuleID,
		ModuleName:  s.def.ModuleName,
		QuizTitle:   s.def.Title,
		TraineeID:   s.TraineeID,
		Score:       score,
		SubmittedAt: s.now(),
		DurationMin: s.def.DurationMin,
	})
	if err != nil {
		// Score stays in memory only; the attempt is left ungraded in the
		// store and the caller decides what to surface.
		return 0, &PersistenceError{Op: "save result", Err: err}
	}
	s.state = StateSubmitted
	s.score = saved.Score
	if s.events != nil {
		_ = s.events.Record(ctx, "attempt_submitted", saved.ID, saved)
	}
	return s.score, nil
}

// Review exposes per-question correctness after submission. No edits are
// possible from here.
func (s *AttemptSession) Review() ([]ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted {
		return nil, ErrNotSubmitted
	}
	items := make([]ReviewItem, len(s.presented))
	for i, q := range s.presented {
		given := s.answers[i]
		items[i] = ReviewItem{
			Question: q,
			Given:    given,
			Correct:  grading.Normalize(given) == grading.Normalize(q.Answer),
		}
	}
	return items, nil
}

// Close stops the countdown without persisting anything. A later attempt
// starts fresh: new shuffle, window recomputed.
func (s *AttemptSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SessionManager tracks live sessions by ID for the HTTP layer.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*AttemptSession
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: map[string]*AttemptSession{}}
}

func (m *SessionManager) Put(s *AttemptSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *SessionManager) Get(id string) (*AttemptSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Close()
		delete(m.sessions, id)
	}
}
