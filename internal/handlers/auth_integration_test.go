package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"civitas/api_governance/pkg/auth"
	"civitas/api_governance/pkg/models"
	"civitas/api_governance/pkg/testutil"
)

// Mounts the real JWT middleware in front of the evolution routes and drives
// it with signed tokens.
func TestJWTProtectedEvolutionRoutes(t *testing.T) {
	mock := setupHandlers(t)
	helper := testutil.NewJWTTestHelperWithSecret([]byte("governance-route-secret"))

	router := gin.New()
	protected := router.Group("/api")
	protected.Use(auth.JWTAuthMiddleware(helper.Secret))
	protected.GET("/evolutions", GetAllEvolutions)

	t.Run("rejects missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, err := helper.GenerateExpiredJWT("user-1", "user@example.org", models.RoleCitoyen)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
		req.Header.Set("Authorization", "Bearer "+helper.GenerateMalformedJWT())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		token, err := helper.GenerateJWTWithWrongSecret("user-1", "user@example.org", models.RoleCitoyen)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("accepts valid token", func(t *testing.T) {
		token, err := helper.GenerateJWTWithCustomExpiry("user-1", "user@example.org", models.RoleCitoyen, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}

		mock.ExpectQuery("SELECT (.+) FROM governance_evolutions e").
			WillReturnRows(sqlmockEvolutionRows())

		req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})
}

// Browser clients send the token in the access_token cookie instead of the
// Authorization header.
func TestJWTCookieAuthentication(t *testing.T) {
	mock := setupHandlers(t)
	helper := testutil.NewJWTTestHelper()

	router := gin.New()
	protected := router.Group("/api")
	protected.Use(auth.JWTAuthMiddleware(helper.Secret))
	protected.GET("/evolutions", GetAllEvolutions)

	token, err := helper.GenerateValidJWT("user-1", "user@example.org", models.RoleCitoyen)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	mock.ExpectQuery("SELECT (.+) FROM governance_evolutions e").
		WillReturnRows(sqlmockEvolutionRows())

	req := httptest.NewRequest(http.MethodGet, "/api/evolutions", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
