package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository"
)

// ArticleService reads the pre-seeded article set.
type ArticleService struct {
	articles repository.ArticleRepository
	logger   *slog.Logger
}

func NewArticleService(articles repository.ArticleRepository, logger *slog.Logger) *ArticleService {
	return &ArticleService{
		articles: articles,
		logger:   logger,
	}
}

// List returns every article ordered by id.
func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

// Get returns one article by id. Missing ids surface as
// apperror.ErrNotFound; the detail handler renders a placeholder for those.
func (s *ArticleService) Get(ctx context.Context, id int64) (*model.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting article %d: %w", id, err)
	}
	return article, nil
}
