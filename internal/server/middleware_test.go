package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware(t *testing.T) {
	secret := []byte("s3cret")
	valid, err := NewToken(secret, "alice", time.Hour)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	other, _ := NewToken([]byte("other"), "alice", time.Hour)
	expired, _ := NewToken(secret, "alice", -time.Minute)
	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString(secret)

	tests := []struct {
		name           string
		path           string
		header         string
		expectedStatus int
		expectedSub    string
	}{
		{name: "valid token", path: "/api/v1/folders", header: "Bearer " + valid, expectedStatus: http.StatusOK, expectedSub: "alice"},
		{name: "missing header", path: "/api/v1/folders", expectedStatus: http.StatusUnauthorized},
		{name: "not bearer", path: "/api/v1/folders", header: "Basic " + valid, expectedStatus: http.StatusUnauthorized},
		{name: "wrong secret", path: "/api/v1/folders", header: "Bearer " + other, expectedStatus: http.StatusUnauthorized},
		{name: "expired", path: "/api/v1/folders", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "no subject", path: "/api/v1/folders", header: "Bearer " + noSub, expectedStatus: http.StatusUnauthorized},
		{name: "health is public", path: "/api/v1/health", expectedStatus: http.StatusOK},
		{name: "metrics is public", path: "/metrics", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sub string
			h := AuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sub = Subject(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			if sub != tt.expectedSub {
				t.Errorf("subject = %q, want %q", sub, tt.expectedSub)
			}
		})
	}
}

func TestRouterAuth(t *testing.T) {
	secret := []byte("s3cret")
	ts := newTestServer(t, secret)
	if code := ts.call("GET", "/api/v1/health", nil, nil); code != http.StatusOK {
		t.Errorf("health = %d", code)
	}
	if code := ts.call("GET", "/api/v1/folders", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("folders without token = %d", code)
	}
	tok, err := NewToken(secret, "bob", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	ts.token = tok
	if code := ts.call("GET", "/api/v1/folders", nil, nil); code != http.StatusOK {
		t.Errorf("folders with token = %d", code)
	}
}
