package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Error covers invalid credentials and unverified accounts. Remediation
// tells the client which follow-up applies (e.g. "resend_verification").
type Error struct {
	Reason      string
	Remediation string
}

func (e *Error) Error() string { return e.Reason }

type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Gender        string `json:"gender"`
	Faculty       string `json:"faculty"`
	Program       string `json:"program"`
	Role          string `json:"role"` // "trainee" | "admin"
	EmailVerified bool   `json:"email_verified"`
}

// Mailer sends the account verification mail. The console implementation is
// the only one wired in dev.
type Mailer interface {
	SendVerification(ctx context.Context, to, token string) error
}

// SignupInput mirrors the signup form. The account email is derived from the
// username, as the enrolment office hands out usernames.
type SignupInput struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Username  string `json:"username" validate:"required,alphanum"`
	Password  string `json:"password" validate:"required,min=6"`
	Gender    string `json:"gender" validate:"required,oneof=Male Female"`
	Faculty   string `json:"faculty" validate:"required"`
	Program   string `json:"program" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=trainee admin"`
}

type Service struct {
	db       *sql.DB
	tokens   *TokenService
	mailer   Mailer
	validate *validator.Validate
}

func NewService(db *sql.DB, tokens *TokenService, mailer Mailer) *Service {
	return &Service{
		db:       db,
		tokens:   tokens,
		mailer:   mailer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (User, error) {
	if err := s.validate.Struct(in); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return User{}, &Error{Reason: "invalid " + strings.ToLower(errs[0].Field())}
		}
		return User{}, &Error{Reason: "invalid signup input"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:        uuid.NewString(),
		Username:  strings.ToLower(in.Username),
		Email:     strings.ToLower(in.Username) + "@gmail.com",
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Gender:    in.Gender,
		Faculty:   in.Faculty,
		Program:   in.Program,
		Role:      in.Role,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id,username,email,password_hash,first_name,last_name,gender,faculty,program,role,email_verified,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID, u.Username, u.Email, string(hash), u.FirstName, u.LastName,
		u.Gender, u.Faculty, u.Program, u.Role, false, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, &Error{Reason: "username already taken"}
		}
		return User{}, err
	}
	if s.mailer != nil {
		_ = s.mailer.SendVerification(ctx, u.Email, u.ID)
	}
	return u, nil
}

// Login checks credentials and returns a signed token. Unverified accounts
// are rejected with a resend remediation.
func (s *Service) Login(ctx context.Context, username, password string) (string, User, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id,username,email,password_hash,first_name,last_name,gender,faculty,program,role,email_verified
		 FROM users WHERE username=$1 OR email=$1`, strings.ToLower(username)).
		Scan(&u.ID, &u.Username, &u.Email, &hash, &u.FirstName, &u.LastName,
			&u.Gender, &u.Faculty, &u.Program, &u.Role, &u.EmailVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return "", User{}, &Error{Reason: "invalid credentials"}
	}
	if err != nil {
		return "", User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", User{}, &Error{Reason: "invalid credentials"}
	}
	if !u.EmailVerified {
		return "", User{}, &Error{Reason: "email not verified", Remediation: "resend_verification"}
	}
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", User{}, err
	}
	return tok, u, nil
}

func (s *Service) ResendVerification(ctx context.Context, username string) error {
	var email, id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id,email FROM users WHERE username=$1 OR email=$1`, strings.ToLower(username)).
		Scan(&id, &email)
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Reason: "unknown user"}
	}
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return nil
	}
	return s.mailer.SendVerification(ctx, email, id)
}

// MarkVerified flips the verification flag; called from the verification
// link handler.
func (s *Service) MarkVerified(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET email_verified=$1 WHERE id=$2`, true, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &Error{Reason: "unknown user"}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
