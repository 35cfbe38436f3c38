package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ctxKey string

const (
	// CookieName is the name of the session cookie.
	CookieName   = "session"
	userIDCtxKey = ctxKey("userID")

	// DefaultTTL is the lifetime of a new session cookie.
	DefaultTTL = 14 * 24 * time.Hour
)

// Sessions issues and validates HMAC-signed session cookies of the form
// "<uuid>.<signature>".
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions returns a codec signing with secret. A zero ttl uses DefaultTTL.
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

func (s *Sessions) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Create sets a signed cookie carrying the user id.
func (s *Sessions) Create(w http.ResponseWriter, userID uuid.UUID) {
	uidStr := userID.String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    uidStr + "." + s.sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

// Clear deletes the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1, HttpOnly: true, Secure: s.secure, SameSite: http.SameSiteLaxMode})
}

// ParseCookies finds the session cookie among cookies and returns its user id.
func (s *Sessions) ParseCookies(cookies []*http.Cookie) (uuid.UUID, bool) {
	for _, c := range cookies {
		if c.Name == CookieName {
			return s.parseValue(c.Value)
		}
	}
	return uuid.Nil, false
}

// Parse validates the request's session cookie and returns the user id.
func (s *Sessions) Parse(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return uuid.Nil, false
	}
	return s.parseValue(c.Value)
}

func (s *Sessions) parseValue(value string) (uuid.UUID, bool) {
	if value == "" {
		return uuid.Nil, false
	}
	uidStr, sig, ok := strings.Cut(value, ".")
	if !ok || strings.Contains(sig, ".") {
		return uuid.Nil, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(uidStr)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uuid.UUID)
	return id, ok
}

// Middleware attaches the session's user id to the request context if present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.Parse(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}
