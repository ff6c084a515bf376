// Package service holds the business logic between the HTTP handlers and the
// repositories. Services depend only on the repository interfaces, so tests
// swap in fakes and the server can run against sqlite, postgres or the mock
// store without touching this package.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/auth"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

const (
	msgUsernameEmpty      = "username is empty"
	msgEmailEmpty         = "email is empty"
	msgPasswordEmpty      = "password is empty"
	msgUsernameRegistered = "username already registered"
	msgEmailRegistered    = "email already registered"
	msgBadCredentials     = "email or password incorrect"
)

// AuthService implements signup, login and GitHub sign-in.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// validateSignupInput accumulates every empty-field message before rejecting,
// so the form shows all problems at once instead of one per submit.
func validateSignupInput(username, email, password string) error {
	var messages []string
	if username == "" {
		messages = append(messages, msgUsernameEmpty)
	}
	if email == "" {
		messages = append(messages, msgEmailEmpty)
	}
	if password == "" {
		messages = append(messages, msgPasswordEmpty)
	}
	if len(messages) > 0 {
		return apperror.ValidationMessages(messages...)
	}
	return nil
}

func validateLoginInput(email, password string) error {
	var messages []string
	if email == "" {
		messages = append(messages, msgEmailEmpty)
	}
	if password == "" {
		messages = append(messages, msgPasswordEmpty)
	}
	if len(messages) > 0 {
		return apperror.ValidationMessages(messages...)
	}
	return nil
}

// Signup runs the registration pipeline: empty checks, then a username
// uniqueness gate, then an email uniqueness gate, then hash-and-insert. The
// uniqueness gates are sequential and terminal: a taken username rejects
// before the email is even looked at. The pre-insert lookups exist for
// per-field messages; the storage UNIQUE constraint remains the authoritative
// duplicate signal and maps back to the same message when two signups race.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateSignupInput(username, email, password); err != nil {
		return nil, err
	}

	_, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, apperror.ValidationFailed("username", msgUsernameRegistered)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("signup: checking username: %w", err)
	}

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.ValidationFailed("email", msgEmailRegistered)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("signup: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is not acceptable")
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, duplicateMessage(err)
		}
		return nil, fmt.Errorf("signup: creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// duplicateMessage folds a storage conflict into the same validation message
// the pre-insert gates produce.
func duplicateMessage(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field == "email" {
		return apperror.ValidationFailed("email", msgEmailRegistered)
	}
	return apperror.ValidationFailed("username", msgUsernameRegistered)
}

// Login authenticates by email and password. Unknown email and wrong
// password return the identical rejection so the response does not reveal
// whether an account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateLoginInput(email, password); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("email", msgBadCredentials)
		}
		return nil, fmt.Errorf("login: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.ValidationFailed("password", msgBadCredentials)
	}

	return user, nil
}

// SignInGitHub finds or creates the member matching a GitHub account. New
// accounts get a random unusable password digest; such members can only sign
// in through GitHub.
func (s *AuthService) SignInGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	if ghUser.Email == "" {
		return nil, apperror.ValidationFailed("email", "github account has no public email")
	}

	user, err := s.users.GetByEmail(ctx, ghUser.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("github sign-in: looking up user: %w", err)
	}

	hash, err := s.passwords.Hash(auth.UnusablePassword())
	if err != nil {
		return nil, fmt.Errorf("github sign-in: hashing placeholder: %w", err)
	}

	user = &model.User{
		Username:     ghUser.Login,
		Email:        ghUser.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// username collision with an existing local account
			return nil, duplicateMessage(err)
		}
		return nil, fmt.Errorf("github sign-in: creating user: %w", err)
	}

	s.logger.Info("user registered via github", "user_id", user.ID, "username", user.Username)
	return user, nil
}
