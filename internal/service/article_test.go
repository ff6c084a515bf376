package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/repository/mock"
)

// brokenArticleRepo fails every operation.
type brokenArticleRepo struct{}

func (brokenArticleRepo) List(context.Context) ([]model.Article, error) {
	return nil, apperror.Unavailable("article list")
}
func (brokenArticleRepo) GetByID(context.Context, int64) (*model.Article, error) {
	return nil, apperror.Unavailable("article lookup")
}

func TestArticleService_List(t *testing.T) {
	svc := NewArticleService(mock.New().Articles(), testLogger())
	ctx := context.Background()

	first, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("List() returned %d articles, want 2", len(first))
	}

	// consecutive calls observe the same ordered set
	second, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("second List() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("consecutive List() calls returned different results")
	}
}

func TestArticleService_Get(t *testing.T) {
	svc := NewArticleService(mock.New().Articles(), testLogger())

	article, err := svc.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if article.Category != model.CategoryLimited {
		t.Errorf("article 2 category = %q, want %q", article.Category, model.CategoryLimited)
	}
}

func TestArticleService_GetMissing(t *testing.T) {
	svc := NewArticleService(mock.New().Articles(), testLogger())

	_, err := svc.Get(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(9999) error = %v, want ErrNotFound", err)
	}
}

func TestArticleService_StoreDown(t *testing.T) {
	svc := NewArticleService(brokenArticleRepo{}, testLogger())
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
	if _, err := svc.Get(ctx, 1); !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("Get() error = %v, want ErrUnavailable", err)
	}
}
