// Package session mints and verifies the opaque per-client session tokens the
// decision lock is keyed by. Tokens are HMAC-signed JWTs carried in a cookie,
// so a client cannot mint or splice session identifiers to shop for a
// different jurisdiction; a tampered cookie simply becomes a fresh session.
package session

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"schemegate/pkg/requestcontext"
)

// CookieName carries the signed session token.
const CookieName = "schemegate_session"

// DefaultTTL is how long a minted session token stays valid. Lock expiry
// follows this token's lifetime.
const DefaultTTL = 24 * time.Hour

// Manager signs and verifies session tokens.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
	logger     *slog.Logger
}

// NewManager builds a session manager around an HMAC signing key.
func NewManager(signingKey string, ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		logger:     logger,
	}
}

// Attach is middleware that guarantees every request downstream carries a
// verified session ID in its context. Requests without a valid cookie get a
// fresh session; invalid or tampered cookies are discarded, never trusted.
func (m *Manager) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := m.sessionFromCookie(r)
		if !ok {
			var err error
			sessionID, err = m.issue(w)
			if err != nil {
				m.logger.ErrorContext(r.Context(), "failed to issue session token", "error", err)
				// Proceed without a session; resolution still works, it
				// just cannot lock.
				next.ServeHTTP(w, r)
				return
			}
		}
		ctx := requestcontext.WithSessionID(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) sessionFromCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	sessionID, err := m.Verify(cookie.Value)
	if err != nil {
		m.logger.WarnContext(r.Context(), "rejecting invalid session token", "error", err)
		return "", false
	}
	return sessionID, true
}

// issue mints a new session ID, signs it, and sets the cookie.
func (m *Manager) issue(w http.ResponseWriter) (string, error) {
	sessionID := uuid.NewString()
	token, err := m.Sign(sessionID)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID, nil
}

// Sign wraps a session ID in a signed token.
func (m *Manager) Sign(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.signingKey)
}

// Verify checks the signature and expiry and returns the embedded session ID.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("missing session subject")
	}
	return claims.Subject, nil
}
