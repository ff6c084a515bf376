package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/config"
	"github.com/sakif/article-site/internal/repository/sqlite"
	"github.com/sakif/article-site/internal/session"
)

// newTestServer builds the full stack against a throwaway sqlite database
// and the real templates.
func newTestServer(t *testing.T) (*Server, *sqlite.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	cfg := &config.Config{
		Port:          "0",
		Env:           "test",
		DBDriver:      "sqlite",
		DBPath:        dbPath,
		SessionSecret: "server-test-secret-0123456789",
		TemplateDir:   "../../web/templates",
		StaticDir:     "../../web/static",
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	srv, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(srv.closeAll)

	// second handle onto the same database for assertions
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("opening assertion handle: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return srv, db
}

func doGet(srv *Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

func doPost(srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	return rr
}

// sessionCookie returns the session cookie a browser would keep: the last
// one the response set.
func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge > 0 {
			found = c
		}
	}
	return found
}

func signupForm(username, email, password string) url.Values {
	return url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	}
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	srv, db := newTestServer(t)

	rr := doPost(srv, "/signup", signupForm("alice", "alice@example.com", "hunter22"))
	if rr.Code != http.StatusFound {
		t.Fatalf("signup status = %d, want 302 (body: %s)", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/list" {
		t.Errorf("signup redirect = %q, want /list", loc)
	}

	user, err := db.Users().GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("user row missing after signup: %v", err)
	}
	if user.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}

	cookie := sessionCookie(rr)
	if cookie == nil {
		t.Fatal("signup did not set a session cookie")
	}
	home := doGet(srv, "/", cookie)
	if !strings.Contains(home.Body.String(), "alice") {
		t.Error("session does not carry the new identity")
	}
}

func TestSignupEmptyUsernameInsertsNothing(t *testing.T) {
	srv, db := newTestServer(t)

	rr := doPost(srv, "/signup", signupForm("", "alice@example.com", "hunter22"))
	if rr.Code != http.StatusOK {
		t.Fatalf("signup status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "username is empty") {
		t.Error("response does not show the empty-username error")
	}

	_, err := db.Users().GetByEmail(context.Background(), "alice@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("a rejected signup must not insert a row, lookup err = %v", err)
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv, db := newTestServer(t)

	first := doPost(srv, "/signup", signupForm("alice", "alice@example.com", "hunter22"))
	if first.Code != http.StatusFound {
		t.Fatalf("first signup status = %d", first.Code)
	}

	rr := doPost(srv, "/signup", signupForm("alice", "other@example.com", "hunter22"))
	if rr.Code != http.StatusOK {
		t.Fatalf("duplicate signup status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "username already registered") {
		t.Error("response does not show the duplicate-username error")
	}

	if _, err := db.Users().GetByEmail(context.Background(), "other@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("duplicate signup must not insert a second row, lookup err = %v", err)
	}
}

func TestSignupLoginRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	if rr := doPost(srv, "/signup", signupForm("alice", "alice@example.com", "hunter22")); rr.Code != http.StatusFound {
		t.Fatalf("signup status = %d", rr.Code)
	}

	rr := doPost(srv, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"hunter22"},
	})
	if rr.Code != http.StatusFound {
		t.Fatalf("login status = %d, want 302 (body: %s)", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/list" {
		t.Errorf("login redirect = %q, want /list", loc)
	}

	cookie := sessionCookie(rr)
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}
	list := doGet(srv, "/list", cookie)
	if !strings.Contains(list.Body.String(), "alice") {
		t.Error("logged-in list view does not show the username")
	}
}

func TestLoginWrongPasswordIndistinguishable(t *testing.T) {
	srv, _ := newTestServer(t)

	if rr := doPost(srv, "/signup", signupForm("alice", "alice@example.com", "hunter22")); rr.Code != http.StatusFound {
		t.Fatalf("signup status = %d", rr.Code)
	}

	wrongPw := doPost(srv, "/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}})
	unknown := doPost(srv, "/login", url.Values{"email": {"nobody@example.com"}, "password": {"hunter22"}})

	for _, rr := range []*httptest.ResponseRecorder{wrongPw, unknown} {
		if rr.Code != http.StatusOK {
			t.Fatalf("rejected login status = %d, want 200", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "email or password incorrect") {
			t.Error("rejected login does not show the shared message")
		}
	}
}

func TestLogoutClearsIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doPost(srv, "/signup", signupForm("alice", "alice@example.com", "hunter22"))
	cookie := sessionCookie(rr)
	if cookie == nil {
		t.Fatal("signup did not set a session cookie")
	}

	out := doGet(srv, "/logout", cookie)
	if out.Code != http.StatusFound || out.Header().Get("Location") != "/list" {
		t.Fatalf("logout = %d → %q, want 302 → /list", out.Code, out.Header().Get("Location"))
	}

	home := doGet(srv, "/", cookie)
	if strings.Contains(home.Body.String(), "Log out") {
		t.Error("request after logout still renders as logged in")
	}
}

func TestArticleDetailAndPlaceholder(t *testing.T) {
	srv, _ := newTestServer(t)

	detail := doGet(srv, "/article/1")
	if detail.Code != http.StatusOK {
		t.Fatalf("article detail status = %d", detail.Code)
	}
	if !strings.Contains(detail.Body.String(), "Welcome to the site") {
		t.Error("detail view does not render the seeded article")
	}

	missing := doGet(srv, "/article/9999")
	if missing.Code != http.StatusOK {
		t.Errorf("missing article status = %d, want 200", missing.Code)
	}
	if !strings.Contains(missing.Body.String(), "Article not available") {
		t.Error("missing article does not render the placeholder")
	}
}

func TestListIsStable(t *testing.T) {
	srv, _ := newTestServer(t)

	first := doGet(srv, "/list")
	second := doGet(srv, "/list")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("list statuses = %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("consecutive list renders differ")
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	health := doGet(srv, "/healthz")
	if health.Code != http.StatusOK || !strings.Contains(health.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %q", health.Code, health.Body.String())
	}

	doGet(srv, "/list")
	metrics := doGet(srv, "/metrics")
	if metrics.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", metrics.Code)
	}
	if !strings.Contains(metrics.Body.String(), "articlesite_http_requests_total") {
		t.Error("metrics output does not include the request counter")
	}
}

func TestGitHubRoutesAbsentWhenUnconfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := doGet(srv, "/auth/github/login")
	if rr.Code != http.StatusNotFound {
		t.Errorf("unconfigured OAuth route status = %d, want 404", rr.Code)
	}
}
