package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func sessionCookie(t *testing.T, s *Sessions, id uuid.UUID) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Create(rec, id)
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("test-secret", 0, false)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, s, id))

	got, ok := s.Parse(req)
	if !ok || got != id {
		t.Fatalf("expected %s, got %s (ok=%v)", id, got, ok)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	id := uuid.New()
	c := sessionCookie(t, NewSessions("other-secret", 0, false), id)

	s := NewSessions("test-secret", 0, false)
	if _, ok := s.ParseCookies([]*http.Cookie{c}); ok {
		t.Fatalf("cookie signed with another secret must be rejected")
	}
}

func TestSessionRejectsMalformedValues(t *testing.T) {
	s := NewSessions("test-secret", 0, false)
	for _, v := range []string{"", "nodot", "a.b.c", "not-a-uuid." + s.sign("not-a-uuid")} {
		if _, ok := s.ParseCookies([]*http.Cookie{{Name: CookieName, Value: v}}); ok {
			t.Errorf("value %q should be rejected", v)
		}
	}
}

func TestClearExpiresCookie(t *testing.T) {
	s := NewSessions("test-secret", 0, false)
	rec := httptest.NewRecorder()
	s.Clear(rec)
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}
}

func TestMiddlewareAttachesUserID(t *testing.T) {
	s := NewSessions("test-secret", 0, false)
	id := uuid.New()
	var seen uuid.UUID
	h := s.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(sessionCookie(t, s, id))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != id {
		t.Fatalf("expected user id in context")
	}
}
