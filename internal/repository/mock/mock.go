// Package mock provides an in-memory repository for running the site with
// no database at all (USE_MOCK_DATA=true). It exists so the views can be
// checked during development; config.Load refuses to enable it in
// production.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

var (
	_ repository.UserRepository    = (*UserStore)(nil)
	_ repository.ArticleRepository = (*ArticleStore)(nil)
)

// Store bundles the in-memory backends behind the same accessor shape the
// database-backed packages use.
type Store struct {
	users    *UserStore
	articles *ArticleStore
}

// New returns a Store seeded with the two sample articles.
func New() *Store {
	return &Store{
		users: &UserStore{
			users:  make(map[int64]*model.User),
			nextID: 1,
		},
		articles: &ArticleStore{
			articles: []model.Article{
				{
					ID:       1,
					Title:    "Sample article (public)",
					Summary:  "A mock summary. Public, visible to everyone.",
					Content:  "Mock article body. Renders without a database.",
					Category: model.CategoryAll,
				},
				{
					ID:       2,
					Title:    "Sample article (members only)",
					Summary:  "A mock preview of a members-only article.",
					Content:  "Members-only mock body.",
					Category: model.CategoryLimited,
				},
			},
		},
	}
}

// Users returns the in-memory user repository.
func (s *Store) Users() *UserStore { return s.users }

// Articles returns the fixture article repository.
func (s *Store) Articles() *ArticleStore { return s.articles }

// Close exists for lifecycle symmetry with the database backends.
func (s *Store) Close() error { return nil }

// UserStore keeps member accounts in a mutex-guarded map.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]*model.User
	nextID int64
}

// Create stores a new user, enforcing the same uniqueness the real backends
// do.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", "username already registered")
		}
		if u.Email == user.Email {
			return apperror.Conflict("email", "email already registered")
		}
	}

	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now().UTC()

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// GetByUsername returns the user with the given username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Username == username })
}

// GetByEmail returns the user with the given email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.Email == email })
}

// GetByID returns the user with the given id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.find(func(u *model.User) bool { return u.ID == id })
}

func (s *UserStore) find(match func(*model.User) bool) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Messages: []string{"user not found"}}
}

// ArticleStore serves a fixed article set.
type ArticleStore struct {
	articles []model.Article
}

// List returns the fixture articles.
func (s *ArticleStore) List(ctx context.Context) ([]model.Article, error) {
	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

// GetByID returns a fixture article by id.
func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	for _, a := range s.articles {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("article", id)
}
