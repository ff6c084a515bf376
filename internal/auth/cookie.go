package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "article-site"

// CookieSigner signs and verifies the session cookie value. The cookie never
// carries session data: it holds a short signed token whose subject is the
// server-side session id, so a tampered cookie fails verification before any
// store lookup happens.
//
// The signing secret is the externally supplied SESSION_SECRET.
type CookieSigner struct {
	secret []byte
}

// NewCookieSigner creates a CookieSigner with the given secret.
func NewCookieSigner(secret string) (*CookieSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &CookieSigner{secret: []byte(secret)}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Sign wraps a session id in a signed token valid for ttl.
func (s *CookieSigner) Sign(sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session cookie: %w", err)
	}

	return signed, nil
}

// Verify parses a cookie value and returns the session id it carries.
// Fails on tampering, expiry, a foreign issuer, or a non-HMAC algorithm.
func (s *CookieSigner) Verify(value string) (string, error) {
	token, err := jwt.ParseWithClaims(
		value,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: session cookie expired")
		}
		return "", fmt.Errorf("auth: invalid session cookie: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", fmt.Errorf("auth: invalid session cookie claims")
	}

	return c.Subject, nil
}
