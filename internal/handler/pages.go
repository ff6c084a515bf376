package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/service"
)

// PageHandler serves the public pages: home, article list, article detail.
type PageHandler struct {
	articles *service.ArticleService
	renderer *Renderer
	logger   *slog.Logger
}

func NewPageHandler(articles *service.ArticleService, renderer *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		articles: articles,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleHome renders the landing page.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "home", newPageData(r))
}

// HandleList renders the article list. When the store is down it renders an
// empty list with 503 instead of failing the request.
//
// HTTP: GET /list
func (h *PageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r)

	articles, err := h.articles.List(r.Context())
	if err != nil {
		h.logger.Error("listing articles", "error", err)
		h.renderer.render(w, http.StatusServiceUnavailable, "list", data)
		return
	}

	data.Articles = articles
	h.renderer.render(w, http.StatusOK, "list", data)
}

// HandleArticle renders one article. A missing id renders the detail view
// with a placeholder article and 200; a store failure renders the same
// placeholder with 503. Neither case 404s.
//
// HTTP: GET /article/{id}
func (h *PageHandler) HandleArticle(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r)
	data.Article = &model.Article{}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.renderer.render(w, http.StatusOK, "article", data)
		return
	}

	article, err := h.articles.Get(r.Context(), id)
	switch {
	case err == nil:
		data.Article = article
		h.renderer.render(w, http.StatusOK, "article", data)
	case errors.Is(err, apperror.ErrNotFound):
		h.renderer.render(w, http.StatusOK, "article", data)
	default:
		h.logger.Error("getting article", "id", id, "error", err)
		h.renderer.render(w, http.StatusServiceUnavailable, "article", data)
	}
}
