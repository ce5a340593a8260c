package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SQLStore persists the quiz engine in sqlite or postgres through
// database/sql. Question lists and lecture lists are stored as JSON columns;
// timestamps are unix seconds and converted back to time.Time here, so the
// core never sees a driver-specific encoding.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateModule(ctx context.Context, m Module) (Module, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	if m.Lectures == nil {
		m.Lectures = []Lecture{}
	}
	lj, err := json.Marshal(m.Lectures)
	if err != nil {
		return Module{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO modules (id,name,enrolment_key,lectures_json,created_at) VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Name, m.EnrolmentKey, string(lj), m.CreatedAt)
	if err != nil {
		return Module{}, err
	}
	return m, nil
}

func (s *SQLStore) GetModule(ctx context.Context, id string) (Module, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,enrolment_key,lectures_json,created_at FROM modules WHERE id=$1`, id)
	return scanModule(row, id)
}

func scanModule(row *sql.Row, id string) (Module, error) {
	var m Module
	var lj string
	if err := row.Scan(&m.ID, &m.Name, &m.EnrolmentKey, &lj, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Module{}, &NotFoundError{Kind: "module", Key: id}
		}
		return Module{}, err
	}
	if err := json.Unmarshal([]byte(lj), &m.Lectures); err != nil {
		m.Lectures = []Lecture{}
	}
	return m, nil
}

func (s *SQLStore) ListModules(ctx context.Context) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,name,enrolment_key,lectures_json,created_at FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Module{}
	for rows.Next() {
		var m Module
		var lj string
		if err := rows.Scan(&m.ID, &m.Name, &m.EnrolmentKey, &lj, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(lj), &m.Lectures); err != nil {
			m.Lectures = []Lecture{}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteModule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "module", Key: id}
	}
	return nil
}

func (s *SQLStore) AppendLecture(ctx context.Context, moduleID string, lec Lecture) error {
	m, err := s.GetModule(ctx, moduleID)
	if err != nil {
		return err
	}
	m.Lectures = append(m.Lectures, lec)
	lj, err := json.Marshal(m.Lectures)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE modules SET lectures_json=$1 WHERE id=$2`, string(lj), moduleID)
	return err
}

func (s *SQLStore) AppendQuiz(ctx context.Context, def QuizDefinition) (QuizDefinition, error) {
	m, err := s.GetModule(ctx, def.ModuleID)
	if err != nil {
		return QuizDefinition{}, err
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	if def.CreatedAt == 0 {
		def.CreatedAt = time.Now().Unix()
	}
	def.ModuleName = m.Name
	qj, err := json.Marshal(def.Questions)
	if err != nil {
		return QuizDefinition{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,module_id,module_name,title,schedule,expiry,duration_min,questions_per_trainee,questions_json,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		def.ID, def.ModuleID, def.ModuleName, def.Title,
		def.Schedule.Unix(), def.Expiry.Unix(), def.DurationMin,
		def.QuestionsPerTrainee, string(qj), def.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return QuizDefinition{}, &ValidationError{Field: "title", Reason: "quiz title already used in this module"}
		}
		return QuizDefinition{}, err
	}
	return def, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, moduleID, title string) (QuizDefinition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,module_id,module_name,title,schedule,expiry,duration_min,questions_per_trainee,questions_json,created_at
		 FROM quizzes WHERE module_id=$1 AND title=$2`, moduleID, title)
	def, err := scanQuiz(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuizDefinition{}, &NotFoundError{Kind: "quiz", Key: title}
		}
		return QuizDefinition{}, err
	}
	return def, nil
}

func scanQuiz(scan func(dest ...any) error) (QuizDefinition, error) {
	var def QuizDefinition
	var sched, exp int64
	var qj string
	if err := scan(&def.ID, &def.ModuleID, &def.ModuleName, &def.Title,
		&sched, &exp, &def.DurationMin, &def.QuestionsPerTrainee, &qj, &def.CreatedAt); err != nil {
		return QuizDefinition{}, err
	}
	def.Schedule = time.Unix(sched, 0).UTC()
	def.Expiry = time.Unix(exp, 0).UTC()
	if err := json.Unmarshal([]byte(qj), &def.Questions); err != nil {
		return QuizDefinition{}, err
	}
	return def, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, moduleID string) ([]QuizDefinition, error) {
	return s.listQuizzes(ctx,
		`SELECT id,module_id,module_name,title,schedule,expiry,duration_min,questions_per_trainee,questions_json,created_at
		 FROM quizzes WHERE module_id=$1 ORDER BY created_at`, moduleID)
}

func (s *SQLStore) ListAllQuizzes(ctx context.Context) ([]QuizDefinition, error) {
	return s.listQuizzes(ctx,
		`SELECT id,module_id,module_name,title,schedule,expiry,duration_min,questions_per_trainee,questions_json,created_at
		 FROM quizzes ORDER BY schedule`)
}

func (s *SQLStore) listQuizzes(ctx context.Context, query string, args ...any) ([]QuizDefinition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizDefinition{}
	for rows.Next() {
		def, err := scanQuiz(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindResult(ctx context.Context, moduleID, quizTitle, traineeID string) (QuizResult, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,module_id,module_name,quiz_title,trainee_id,score,submitted_at,duration_min
		 FROM quiz_results WHERE module_id=$1 AND quiz_title=$2 AND trainee_id=$3`,
		moduleID, quizTitle, traineeID)
	res, err := scanResult(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuizResult{}, false, nil
		}
		return QuizResult{}, false, err
	}
	return res, true, nil
}

func scanResult(scan func(dest ...any) error) (QuizResult, error) {
	var r QuizResult
	var at int64
	if err := scan(&r.ID, &r.ModuleID, &r.ModuleName, &r.QuizTitle, &r.TraineeID,
		&r.Score, &at, &r.DurationMin); err != nil {
		return QuizResult{}, err
	}
	r.SubmittedAt = time.Unix(at, 0).UTC()
	return r, nil
}

// SaveResult inserts the result. The compound unique index on
// (module_id, quiz_title, trainee_id) settles the two-tab race: the losing
// writer gets the stored row back instead of creating a duplicate.
func (s *SQLStore) SaveResult(ctx context.Context, res QuizResult) (QuizResult, error) {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.SubmittedAt.IsZero() {
		res.SubmittedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quiz_results (id,module_id,module_name,quiz_title,trainee_id,score,submitted_at,duration_min)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		res.ID, res.ModuleID, res.ModuleName, res.QuizTitle, res.TraineeID,
		res.Score, res.SubmittedAt.Unix(), res.DurationMin)
	if err != nil {
		if isUniqueViolation(err) {
			existing, found, ferr := s.FindResult(ctx, res.ModuleID, res.QuizTitle, res.TraineeID)
			if ferr == nil && found {
				return existing, nil
			}
		}
		return QuizResult{}, err
	}
	return res, nil
}

func (s *SQLStore) ListResults(ctx context.Context, f ResultFilter) ([]QuizResult, error) {
	query := `SELECT id,module_id,module_name,quiz_title,trainee_id,score,submitted_at,duration_min FROM quiz_results`
	var conds []string
	var args []any
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, col+"=$"+strconv.Itoa(len(args)))
	}
	add("module_id", f.ModuleID)
	add("quiz_title", f.QuizTitle)
	add("trainee_id", f.TraineeID)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizResult{}
	for rows.Next() {
		r, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id,title,body,created_at) VALUES ($1,$2,$3,$4)`,
		a.ID, a.Title, a.Body, a.CreatedAt)
	if err != nil {
		return Announcement{}, err
	}
	return a, nil
}

func (s *SQLStore) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,body,created_at FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Announcement{}
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteAnnouncement(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "announcement", Key: id}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
