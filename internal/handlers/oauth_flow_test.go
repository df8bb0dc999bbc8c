package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// fakeProvider serves a token endpoint and a userinfo endpoint
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"sub":   "subject-42",
			"email": "OAuth.User@Example.com",
			"name":  "OAuth User",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOAuthFlow(t *testing.T) {
	f := newAPIFixture(t)
	provider := fakeProvider(t)

	h := NewAuthHandler(f.auth, map[string]OAuthProvider{
		"fake": {
			Name:  "fake",
			Label: "Fake",
			Config: &oauth2.Config{
				ClientID:     "client",
				ClientSecret: "secret",
				Endpoint: oauth2.Endpoint{
					AuthURL:  provider.URL + "/authorize",
					TokenURL: provider.URL + "/token",
				},
			},
			UserInfoURL: provider.URL + "/userinfo",
		},
		"unset": {Name: "unset", Label: "Unset", Config: &oauth2.Config{}},
	}, "http://app.test")

	rec := httptest.NewRecorder()
	h.Providers(rec, httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	var views []ProviderView
	decodeBody(t, rec, &views)
	if len(views) != 1 || views[0].Name != "fake" {
		t.Fatalf("providers = %+v, want only the configured one", views)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/fake/start", nil)
	req.SetPathValue("provider", "fake")
	rec = httptest.NewRecorder()
	h.StartOAuth(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("start status = %d, want 302", rec.Code)
	}

	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	if got := location.Query().Get("redirect_uri"); got != "http://app.test/api/auth/fake/callback" {
		t.Errorf("redirect_uri = %q", got)
	}
	state := location.Query().Get("state")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != OAuthStateCookieName {
		t.Fatalf("cookies = %+v, want the state cookie", cookies)
	}
	stateCookie := cookies[0]

	callback := func(code, state string, cookie *http.Cookie) *httptest.ResponseRecorder {
		q := url.Values{"code": {code}, "state": {state}}
		req := httptest.NewRequest(http.MethodGet, "/api/auth/fake/callback?"+q.Encode(), nil)
		req.SetPathValue("provider", "fake")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		h.OAuthCallback(rec, req)
		return rec
	}

	if rec := callback("good-code", "forged", stateCookie); rec.Code != http.StatusBadRequest {
		t.Errorf("forged state status = %d, want 400", rec.Code)
	}
	if rec := callback("good-code", state, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing cookie status = %d, want 400", rec.Code)
	}
	if rec := callback("bad-code", state, stateCookie); rec.Code != http.StatusBadRequest {
		t.Errorf("bad code status = %d, want 400", rec.Code)
	}

	rec = callback("good-code", state, stateCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("callback status = %d; body = %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	if resp.Token == "" || resp.User == nil || resp.User.Email != "oauth.user@example.com" {
		t.Fatalf("response = %+v", resp)
	}
	if resp.User.OAuthProvider != "fake" {
		t.Errorf("provider = %q, want fake", resp.User.OAuthProvider)
	}

	if rec := f.do(t, http.MethodGet, "/api/me", resp.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("token from callback rejected: %d", rec.Code)
	}
}

func TestStartOAuthUnknownProvider(t *testing.T) {
	h := NewAuthHandler(nil, nil, "")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/nope/start", nil)
	req.SetPathValue("provider", "nope")
	rec := httptest.NewRecorder()

	h.StartOAuth(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not configured") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
