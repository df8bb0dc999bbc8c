package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linguaclash/internal/security"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := bearerToken(req); got != tt.want {
			t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRequireAuthWithoutToken(t *testing.T) {
	m := NewMiddleware(nil, nil)
	called := false
	h := m.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}
	if called {
		t.Error("handler ran without a user")
	}
}

func TestOptionalAuthLetsGuestsThrough(t *testing.T) {
	m := NewMiddleware(nil, nil)
	var id int64 = -1
	h := m.OptionalAuth(func(w http.ResponseWriter, r *http.Request) { id = userID(r) })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/folders", nil))

	if id != 0 {
		t.Errorf("userID = %d, want 0 for a guest", id)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := security.NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	m := NewMiddleware(nil, limiter)
	h := m.RateLimit(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var seen int
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		seen = w.(*statusRecorder).status
	})

	rec := httptest.NewRecorder()
	Logging(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusAccepted || seen != http.StatusAccepted {
		t.Errorf("code = %d, recorded = %d, want 202", rec.Code, seen)
	}
}

func TestRequireAdmin(t *testing.T) {
	f := newAPIFixture(t)
	auth := f.register(t, "plain@example.com")

	rec := f.do(t, http.MethodGet, "/api/admin/stats", auth.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a non-admin", rec.Code)
	}

	if _, err := f.db.Exec("UPDATE users SET is_admin = ? WHERE id = ?", true, auth.User.ID); err != nil {
		t.Fatalf("promote user: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/api/admin/stats", auth.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for an admin", rec.Code)
	}
	var stats DatabaseStats
	decodeBody(t, rec, &stats)
	if stats.Users != 1 {
		t.Errorf("stats = %+v, want one user", stats)
	}
}

func TestInvalidTokenIsRejectedOnOptionalRoutes(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/folders", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/folders", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("guest status = %d, want 200", rec.Code)
	}
}

func TestGetUserFromContextWithoutUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if u := GetUserFromContext(req.Context()); u != nil {
		t.Errorf("GetUserFromContext() = %+v, want nil", u)
	}
}
