package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

// UserStore implements repository.UserRepository on the shared pool.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user, filling in ID and CreatedAt. A unique-violation
// (SQLSTATE 23505) is translated to a conflict error on the violated field.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return apperror.Conflict("username", "username already registered")
			case "users_email_key":
				return apperror.Conflict("email", "email already registered")
			default:
				return apperror.Conflict("", "account already registered")
			}
		}
		return apperror.Unavailable("registration")
	}

	return nil
}

// GetByUsername returns the user with the given username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE username = $1`, username)
}

// GetByEmail returns the user with the given email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE email = $1`, email)
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users WHERE id = $1`, id)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Messages: []string{"user not found"}}
		}
		return nil, apperror.Unavailable("user lookup")
	}
	return &u, nil
}
