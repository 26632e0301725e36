package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farm-ledger/internal/config"
	"github.com/farm-ledger/internal/constants"
	handlershared "github.com/farm-ledger/internal/http/handlers/shared"
	"github.com/farm-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": handlershared.GetRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware(service.NewTokenService(config.JWTConfig{})))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if code := decodeStatusCode(t, w); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestJWTAuthMiddlewareSetsAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenService(config.JWTConfig{SecretKey: "router-secret", Issuer: "farm-ledger", ExpireHours: 1})
	token, _, err := tokens.Issue(7, "ops", constants.RoleAdmin)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	r := gin.New()
	r.Use(JWTAuthMiddleware(tokens))
	r.GET("/admin/ping", func(c *gin.Context) {
		auth, ok := handlershared.GetAuthContext(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "actor_id": auth.ActorID, "role": auth.Role})
	})

	cases := []struct {
		name   string
		header string
		cookie string
		want   int
	}{
		{name: "bearer", header: "Bearer " + token, want: 0},
		{name: "cookie", cookie: token, want: 0},
		{name: "missing", want: 401},
		{name: "wrong scheme", header: "Token " + token, want: 401},
		{name: "tampered", header: "Bearer " + token + "x", want: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tc.cookie})
			}
			r.ServeHTTP(w, req)
			if tc.want != 0 {
				if code := decodeStatusCode(t, w); code != tc.want {
					t.Fatalf("status_code want %d got %d", tc.want, code)
				}
				return
			}
			var resp struct {
				OK      bool   `json:"ok"`
				ActorID uint   `json:"actor_id"`
				Role    string `json:"role"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal response failed: %v", err)
			}
			if !resp.OK || resp.ActorID != 7 || resp.Role != constants.RoleAdmin {
				t.Fatalf("unexpected auth context: %+v", resp)
			}
		})
	}
}
