package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

// UserStore implements repository.UserRepository on the shared pool.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts a new user and fills in ID and CreatedAt.
//
// The UNIQUE constraints on username and email are the authoritative
// duplicate check: the signup pipeline's pre-insert lookups produce the
// per-field messages, but a race between two concurrent signups is settled
// here, with the violation translated to a conflict error on the losing
// side.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if conflictErr := translateUnique(err); conflictErr != nil {
			return conflictErr
		}
		return apperror.Unavailable("registration")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByUsername returns the user with the given username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByEmail returns the user with the given email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Messages: []string{"user not found"}}
		}
		return nil, apperror.Unavailable("user lookup")
	}
	return &u, nil
}

// translateUnique maps a SQLite UNIQUE-constraint failure to a conflict
// error naming the offending field, or nil if err is something else. The
// driver exposes the violated column in the error text, but only a message
// carrying the UNIQUE marker is a duplicate; any other error mentioning a
// column stays a plain failure.
func translateUnique(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return apperror.Conflict("username", "username already registered")
	case strings.Contains(msg, "users.email"):
		return apperror.Conflict("email", "email already registered")
	}
	return apperror.Conflict("", "account already registered")
}
