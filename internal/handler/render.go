// Package handler contains the HTTP handlers. Handlers parse the request,
// call a service, and translate the result (or its apperror kind) into a
// rendered page, a redirect, or a degraded 503 render.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sakif/article-site/internal/model"
	"github.com/sakif/article-site/internal/session"
)

// Renderer holds one parsed template set per page, each combined with the
// shared layout.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses layout.html plus every other *.html page under
// templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("handler: globbing templates: %w", err)
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", page, err)
		}
		templates[strings.TrimSuffix(filepath.Base(page), ".html")] = t
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("handler: no page templates found in %s", templateDir)
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// pageData is the envelope every template receives. Viewer drives the
// guest/member chrome; Errors feeds the form error list.
type pageData struct {
	Viewer   model.Viewer
	Errors   []string
	Articles []model.Article
	Article  *model.Article
	Form     map[string]string
}

// newPageData starts an envelope for the current request's viewer.
func newPageData(r *http.Request) pageData {
	return pageData{
		Viewer: session.ViewerFromContext(r.Context()),
		Form:   map[string]string{},
	}
}

// render writes the named page with the given status. Headers are committed
// before template execution, so a mid-render failure can only truncate the
// body; it is logged rather than turned into a second WriteHeader.
func (rn *Renderer) render(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := rn.templates[name]
	if !ok {
		rn.logger.Error("unknown template", "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		rn.logger.Error("rendering template", "name", name, "error", err)
	}
}
