package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-accounts/internal/infra/security"
	"github.com/arklim/social-platform-accounts/internal/usecase"
)

func newAuthTestRouter(t *testing.T, ttl time.Duration) (*gin.Engine, *usecase.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := security.NewEphemeralKeyProvider("test-signing")
	if err != nil {
		t.Fatalf("NewEphemeralKeyProvider returned error: %v", err)
	}
	manager := security.NewJWTManager(provider, "test-signing", "accounts-service", "accounts-service")
	tokens := usecase.NewTokenService(manager, manager, ttl)

	router := gin.New()
	router.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": CurrentUsername(c)})
	})

	return router, tokens
}

func TestRequireAuthMissingHeader(t *testing.T) {
	router, _ := newAuthTestRouter(t, time.Minute)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	router, _ := newAuthTestRouter(t, time.Minute)

	for _, header := range []string{"Bearer", "Token abc", "Bearer   "} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	router, _ := newAuthTestRouter(t, time.Minute)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid access token") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRequireAuthExpiredToken(t *testing.T) {
	router, tokens := newAuthTestRouter(t, -time.Minute)

	header, err := tokens.IssueAuthHeader("jdoe")
	if err != nil {
		t.Fatalf("IssueAuthHeader returned error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", header.Get("Authorization"))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access token expired") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRequireAuthSetsUsername(t *testing.T) {
	router, tokens := newAuthTestRouter(t, time.Minute)

	header, err := tokens.IssueAuthHeader("jdoe")
	if err != nil {
		t.Fatalf("IssueAuthHeader returned error: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", header.Get("Authorization"))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"username":"jdoe"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
