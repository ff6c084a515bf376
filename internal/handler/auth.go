package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/article-site/internal/apperror"
	"github.com/sakif/article-site/internal/auth"
	"github.com/sakif/article-site/internal/service"
	"github.com/sakif/article-site/internal/session"
)

const stateCookieName = "oauth_state"

// Each form carries its own generic message for a degraded render, so a
// store failure during a pre-check does not leak its internal wording.
const (
	signupUnavailable = "registration is currently unavailable"
	loginUnavailable  = "login is currently unavailable"
)

// AuthHandler serves the signup, login and logout pages plus the optional
// GitHub sign-in flow.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *session.Manager
	github   *auth.GitHubProvider // nil when OAuth is not configured
	renderer *Renderer
	logger   *slog.Logger
}

func NewAuthHandler(
	authService *service.AuthService,
	sessions *session.Manager,
	github *auth.GitHubProvider,
	renderer *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:     authService,
		sessions: sessions,
		github:   github,
		renderer: renderer,
		logger:   logger,
	}
}

// HandleSignupForm renders the empty signup form.
//
// HTTP: GET /signup
func (h *AuthHandler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "signup", newPageData(r))
}

// HandleSignup runs the registration pipeline and, on success, writes the
// new identity into the session and redirects to the article list.
// Validation rejections re-render the form with 200 and every message;
// a store failure re-renders with 503 and a single generic message.
//
// HTTP: POST /signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.auth.Signup(r.Context(), username, email, password)
	if err != nil {
		data := newPageData(r)
		data.Errors = formMessages(err, signupUnavailable)
		data.Form["username"] = username
		data.Form["email"] = email
		h.renderer.render(w, formStatus(err), "signup", data)
		return
	}

	if err := h.sessions.Login(w, r, user.ID, user.Username); err != nil {
		h.logger.Error("establishing session after signup", "user_id", user.ID, "error", err)
		data := newPageData(r)
		data.Errors = []string{signupUnavailable}
		h.renderer.render(w, http.StatusServiceUnavailable, "signup", data)
		return
	}

	http.Redirect(w, r, "/list", http.StatusFound)
}

// HandleLoginForm renders the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.render(w, http.StatusOK, "login", newPageData(r))
}

// HandleLogin authenticates and redirects to the article list.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	user, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		data := newPageData(r)
		data.Errors = formMessages(err, loginUnavailable)
		data.Form["email"] = email
		h.renderer.render(w, formStatus(err), "login", data)
		return
	}

	if err := h.sessions.Login(w, r, user.ID, user.Username); err != nil {
		h.logger.Error("establishing session after login", "user_id", user.ID, "error", err)
		data := newPageData(r)
		data.Errors = []string{loginUnavailable}
		h.renderer.render(w, http.StatusServiceUnavailable, "login", data)
		return
	}

	http.Redirect(w, r, "/list", http.StatusFound)
}

// HandleLogout destroys the session and redirects to the article list. The
// redirect happens regardless of store errors.
//
// HTTP: GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
	http.Redirect(w, r, "/list", http.StatusFound)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page,
// recording a single-use state value in a short-lived cookie for the
// callback's CSRF check.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow: verify the state, exchange
// the code for a GitHub profile, find-or-create the member, establish the
// session.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("github callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// the state is single-use
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied", "error", errParam)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", "error", err)
		http.Error(w, "authentication failed", http.StatusServiceUnavailable)
		return
	}

	user, err := h.auth.SignInGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("github callback: sign-in failed", "login", ghUser.Login, "error", err)
		if errors.Is(err, apperror.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "authentication failed", http.StatusServiceUnavailable)
		return
	}

	if err := h.sessions.Login(w, r, user.ID, user.Username); err != nil {
		h.logger.Error("github callback: establishing session", "user_id", user.ID, "error", err)
		http.Error(w, "authentication failed", http.StatusServiceUnavailable)
		return
	}

	http.Redirect(w, r, "/list", http.StatusSeeOther)
}

// formStatus picks the render status for a failed form submit: validation
// rejections keep 200, store failures degrade to 503.
func formStatus(err error) int {
	if errors.Is(err, apperror.ErrUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// formMessages returns the messages a failed form submit renders. A store
// failure collapses to the flow's single generic message; everything else
// keeps its validation messages.
func formMessages(err error, unavailable string) []string {
	if errors.Is(err, apperror.ErrUnavailable) {
		return []string{unavailable}
	}
	return apperror.MessagesOf(err)
}
