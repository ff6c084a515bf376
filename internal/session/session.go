// Package session implements server-side sessions referenced by a signed
// cookie. The cookie carries only a signed session id; all session state
// lives in a Store (in-process by default, Redis when configured).
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/article-site/internal/auth"
	"github.com/sakif/article-site/internal/model"
)

const (
	// CookieName is the session cookie, SameSite=Lax and HttpOnly.
	CookieName = "session"
	// TTL bounds both the store record and the cookie MaxAge.
	TTL = 7 * 24 * time.Hour
)

// Record is a server-side session. UserID zero means the session has not
// authenticated yet; Viewer() is the only place that distinction is read.
type Record struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Viewer returns the identity this record renders pages as.
func (r *Record) Viewer() model.Viewer {
	if r == nil || r.UserID == 0 {
		return model.Anonymous()
	}
	return model.Authenticated(r.UserID, r.Username)
}

// Store persists session records. Get returns (nil, nil) for a missing or
// expired id; implementations discard expired records themselves.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

type contextKey struct{}

// Manager resolves the session for each request and exposes the login and
// logout transitions to handlers.
type Manager struct {
	store  Store
	signer *auth.CookieSigner
	secure bool
	logger *slog.Logger
}

// NewManager creates a Manager. secure controls the cookie's Secure
// attribute and is set for production deployments behind HTTPS.
func NewManager(store Store, signer *auth.CookieSigner, secure bool, logger *slog.Logger) *Manager {
	return &Manager{store: store, signer: signer, secure: secure, logger: logger}
}

// Middleware resolves the session cookie to a Record, creating an empty one
// when the cookie is absent or invalid, and stores it in the request
// context. A store failure downgrades the request to anonymous instead of
// failing it.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := m.resolve(r)
		if rec == nil {
			rec = m.create(w, r)
		}
		ctx := context.WithValue(r.Context(), contextKey{}, rec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve returns the existing valid record for the request, or nil.
func (m *Manager) resolve(r *http.Request) *Record {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	sid, err := m.signer.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	rec, err := m.store.Get(r.Context(), sid)
	if err != nil {
		m.logger.Warn("session lookup failed", slog.String("error", err.Error()))
		return nil
	}
	return rec
}

// create makes a fresh anonymous record and sets the cookie. The record is
// returned even if persisting it fails, so the request still carries a
// usable (anonymous) session.
func (m *Manager) create(w http.ResponseWriter, r *http.Request) *Record {
	rec := &Record{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().Add(TTL),
	}
	if err := m.store.Save(r.Context(), rec); err != nil {
		m.logger.Warn("session save failed", slog.String("error", err.Error()))
	}

	value, err := m.signer.Sign(rec.ID, TTL)
	if err != nil {
		m.logger.Error("session cookie signing failed", slog.String("error", err.Error()))
		return rec
	}
	http.SetCookie(w, m.cookie(value, int(TTL.Seconds())))
	return rec
}

// Login writes the authenticated identity into a fresh session. The
// anonymous record is discarded and the cookie re-signed with a new id, so
// an id captured before authentication never names a member session.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID int64, username string) error {
	old := FromContext(r.Context())
	if old != nil {
		if err := m.store.Delete(r.Context(), old.ID); err != nil {
			m.logger.Warn("discarding pre-login session failed", slog.String("error", err.Error()))
		}
	}

	rec := &Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(TTL),
	}
	if err := m.store.Save(r.Context(), rec); err != nil {
		return err
	}

	value, err := m.signer.Sign(rec.ID, TTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(value, int(TTL.Seconds())))

	// later reads through the request context see the new session
	if old != nil {
		*old = *rec
	}
	return nil
}

// Logout destroys the session record unconditionally and expires the
// cookie. A destroy failure is logged and swallowed; the caller redirects
// either way, matching the site's long-standing behavior.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	if rec := FromContext(r.Context()); rec != nil {
		if err := m.store.Delete(r.Context(), rec.ID); err != nil {
			m.logger.Warn("session destroy failed", slog.String("error", err.Error()))
		}
	}
	expired := m.cookie("", -1)
	http.SetCookie(w, expired)
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	}
}

// FromContext returns the request's session record, or nil outside the
// middleware.
func FromContext(ctx context.Context) *Record {
	rec, _ := ctx.Value(contextKey{}).(*Record)
	return rec
}

// ViewerFromContext returns the request's viewer identity, anonymous when
// no session is present.
func ViewerFromContext(ctx context.Context) model.Viewer {
	return FromContext(ctx).Viewer()
}
