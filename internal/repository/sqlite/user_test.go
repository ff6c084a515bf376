package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
)

// newTestDB returns a DB backed by a fresh in-memory database, closed when
// the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortestingonly",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$04$fakehashfortestingonly",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == 0 {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "alice@example.com")

	dup := &model.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
	}
	err := db.Users().Create(context.Background(), dup)
	if err == nil {
		t.Fatal("Create() should have failed for duplicate username")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "username" {
		t.Errorf("conflict Field = %q, want %q", appErr.Field, "username")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice", "alice@example.com")

	dup := &model.User{
		Username:     "bob",
		Email:        "alice@example.com",
		PasswordHash: "x",
	}
	err := db.Users().Create(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "email" {
		t.Errorf("conflict Field = %q, want %q", appErr.Field, "email")
	}
}

func TestTranslateUnique(t *testing.T) {
	tests := []struct {
		name      string
		msg       string
		wantField string
		wantNil   bool
	}{
		{
			name:      "username violation",
			msg:       "constraint failed: UNIQUE constraint failed: users.username (1555)",
			wantField: "username",
		},
		{
			name:      "email violation",
			msg:       "constraint failed: UNIQUE constraint failed: users.email (2067)",
			wantField: "email",
		},
		{
			name:      "violation on an unmapped column",
			msg:       "constraint failed: UNIQUE constraint failed: users.rowid",
			wantField: "",
		},
		{
			// a non-UNIQUE error mentioning a column must not become a
			// duplicate
			name:    "unrelated error naming the column",
			msg:     "SQL logic error: no such column: users.username",
			wantNil: true,
		},
		{
			name:    "unrelated driver error",
			msg:     "database is locked",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateUnique(errors.New(tt.msg))
			if tt.wantNil {
				if got != nil {
					t.Fatalf("translateUnique() = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, apperror.ErrConflict) {
				t.Fatalf("translateUnique() = %v, want ErrConflict", got)
			}
			var appErr *apperror.AppError
			if errors.As(got, &appErr) && appErr.Field != tt.wantField {
				t.Errorf("conflict Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestGetByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice", "alice@example.com")

	got, err := db.Users().GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByUsername() ID = %d, want %d", got.ID, created.ID)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("GetByUsername() Email = %q, want %q", got.Email, "alice@example.com")
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice", "alice@example.com")

	got, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("GetByID() Username = %q, want %q", got.Username, "alice")
	}
}
