// Package repository declares the storage interfaces the service layer
// programs against. Implementations live in the sqlite, postgres, and mock
// subpackages and are selected at startup in server.New.
package repository

import (
	"context"

	"github.com/sakif/article-site/internal/model"
)

// UserRepository persists member accounts.
//
// GetByUsername and GetByEmail return apperror.ErrNotFound when no row
// matches. Create fills in ID and CreatedAt; a UNIQUE violation surfaces as
// apperror.ErrConflict with the offending field, which the signup pipeline
// treats as the authoritative duplicate signal. Any other storage failure is
// apperror.ErrUnavailable.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// ArticleRepository reads the pre-seeded article set. List returns articles
// ordered by id so consecutive calls observe the same ordering.
type ArticleRepository interface {
	List(ctx context.Context) ([]model.Article, error)
	GetByID(ctx context.Context, id int64) (*model.Article, error)
}
