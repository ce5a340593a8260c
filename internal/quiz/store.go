package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResultFilter narrows ListResults. Zero values match everything.
type ResultFilter struct {
	ModuleID  string
	QuizTitle string
	TraineeID string
}

// Store is the persistence boundary for the quiz engine. Implementations
// must make AppendQuiz and SaveResult single atomic writes: either the whole
// record lands or nothing does.
type Store interface {
	CreateModule(ctx context.Context, m Module) (Module, error)
	GetModule(ctx context.Context, id string) (Module, error)
	ListModules(ctx context.Context) ([]Module, error)
	DeleteModule(ctx context.Context, id string) error
	AppendLecture(ctx context.Context, moduleID string, lec Lecture) error

	AppendQuiz(ctx context.Context, def QuizDefinition) (QuizDefinition, error)
	GetQuiz(ctx context.Context, moduleID, title string) (QuizDefinition, error)
	ListQuizzes(ctx context.Context, moduleID string) ([]QuizDefinition, error)
	ListAllQuizzes(ctx context.Context) ([]QuizDefinition, error)

	FindResult(ctx context.Context, moduleID, quizTitle, traineeID string) (QuizResult, bool, error)
	SaveResult(ctx context.Context, res QuizResult) (QuizResult, error)
	ListResults(ctx context.Context, f ResultFilter) ([]QuizResult, error)

	CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	ListAnnouncements(ctx context.Context) ([]Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error
}

type memoryStore struct {
	mu            sync.RWMutex
	modules       map[string]Module
	quizzes       map[string][]QuizDefinition // moduleID -> defs
	results       []QuizResult
	announcements map[string]Announcement
}

// NewInMemoryStore backs dev mode and tests. It mirrors the SQL store's
// constraints: unique quiz title per module, at most one result per
// (module, quiz, trainee).
func NewInMemoryStore() Store {
	return &memoryStore{
		modules:       map[string]Module{},
		quizzes:       map[string][]QuizDefinition{},
		announcements: map[string]Announcement{},
	}
}

func (m *memoryStore) CreateModule(_ context.Context, mod Module) (Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mod.ID == "" {
		mod.ID = uuid.NewString()
	}
	if mod.CreatedAt == 0 {
		mod.CreatedAt = time.Now().Unix()
	}
	if mod.Lectures == nil {
		mod.Lectures = []Lecture{}
	}
	m.modules[mod.ID] = mod
	return mod, nil
}

func (m *memoryStore) GetModule(_ context.Context, id string) (Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mod, ok := m.modules[id]
	if !ok {
		return Module{}, &NotFoundError{Kind: "module", Key: id}
	}
	return mod, nil
}

func (m *memoryStore) ListModules(_ context.Context) ([]Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Module, 0, len(m.modules))
	for _, mod := range m.modules {
		out = append(out, mod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryStore) DeleteModule(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[id]; !ok {
		return &NotFoundError{Kind: "module", Key: id}
	}
	delete(m.modules, id)
	delete(m.quizzes, id)
	return nil
}

func (m *memoryStore) AppendLecture(_ context.Context, moduleID string, lec Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mod, ok := m.modules[moduleID]
	if !ok {
		return &NotFoundError{Kind: "module", Key: moduleID}
	}
	mod.Lectures = append(mod.Lectures, lec)
	m.modules[moduleID] = mod
	return nil
}

func (m *memoryStore) AppendQuiz(_ context.Context, def QuizDefinition) (QuizDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mod, ok := m.modules[def.ModuleID]
	if !ok {
		return QuizDefinition{}, &NotFoundError{Kind: "module", Key: def.ModuleID}
	}
	for _, q := range m.quizzes[def.ModuleID] {
		if q.Title == def.Title {
			return QuizDefinition{}, &ValidationError{Field: "title", Reason: "quiz title already used in this module"}
		}
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if def.CreatedAt == 0 {
		def.CreatedAt = time.Now().Unix()
	}
	def.ModuleName = mod.Name
	m.quizzes[def.ModuleID] = append(m.quizzes[def.ModuleID], def)
	return def, nil
}

func (m *memoryStore) GetQuiz(_ context.Context, moduleID, title string) (QuizDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, q := range m.quizzes[moduleID] {
		if q.Title == title {
			return q, nil
		}
	}
	return QuizDefinition{}, &NotFoundError{Kind: "quiz", Key: title}
}

func (m *memoryStore) ListQuizzes(_ context.Context, moduleID string) ([]QuizDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]QuizDefinition, len(m.quizzes[moduleID]))
	copy(out, m.quizzes[moduleID])
	return out, nil
}

func (m *memoryStore) ListAllQuizzes(_ context.Context) ([]QuizDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []QuizDefinition
	for _, defs := range m.quizzes {
		out = append(out, defs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Schedule.Before(out[j].Schedule) })
	return out, nil
}

func (m *memoryStore) FindResult(_ context.Context, moduleID, quizTitle, traineeID string) (QuizResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.results {
		if r.ModuleID == moduleID && r.QuizTitle == quizTitle && r.TraineeID == traineeID {
			return r, true, nil
		}
	}
	return QuizResult{}, false, nil
}

func (m *memoryStore) SaveResult(_ context.Context, res QuizResult) (QuizResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.results {
		if r.ModuleID == res.ModuleID && r.QuizTitle == res.QuizTitle && r.TraineeID == res.TraineeID {
			// Unique (module, quiz, trainee): the losing writer gets the
			// stored row back, same as the SQL store's index behavior.
			return r, nil
		}
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	m.results = append(m.results, res)
	return res, nil
}

func (m *memoryStore) ListResults(_ context.Context, f ResultFilter) ([]QuizResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []QuizResult
	for _, r := range m.results {
		if f.ModuleID != "" && r.ModuleID != f.ModuleID {
			continue
		}
		if f.QuizTitle != "" && r.QuizTitle != f.QuizTitle {
			continue
		}
		if f.TraineeID != "" && r.TraineeID != f.TraineeID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryStore) CreateAnnouncement(_ context.Context, a Announcement) (Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	m.announcements[a.ID] = a
	return a, nil
}

func (m *memoryStore) ListAnnouncements(_ context.Context) ([]Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Announcement, 0, len(m.announcements))
	for _, a := range m.announcements {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) DeleteAnnouncement(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.announcements[id]; !ok {
		return &NotFoundError{Kind: "announcement", Key: id}
	}
	delete(m.announcements, id)
	return nil
}
