package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

// ArticleStore implements repository.ArticleRepository on the shared pool.
type ArticleStore struct {
	pool *pgxpool.Pool
}

var _ repository.ArticleRepository = (*ArticleStore)(nil)

// List returns all articles ordered by id.
func (s *ArticleStore) List(ctx context.Context) ([]model.Article, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, title, summary, content, category
		 FROM articles
		 ORDER BY id`)
	if err != nil {
		return nil, apperror.Unavailable("article list")
	}
	defer rows.Close()

	var articles []model.Article
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category); err != nil {
			return nil, apperror.Unavailable("article list")
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("article list")
	}

	return articles, nil
}

// GetByID returns a single article.
func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	var a model.Article
	err := s.pool.QueryRow(ctx,
		`SELECT id, title, summary, content, category
		 FROM articles
		 WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.Category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("article", id)
		}
		return nil, apperror.Unavailable("article lookup")
	}

	return &a, nil
}
