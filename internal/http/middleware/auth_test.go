package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"busbenin/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authTestRouter(extra ...gin.HandlerFunc) (*gin.Engine, *domain.RequestContext) {
	gin.SetMode(gin.TestMode)
	var captured domain.RequestContext

	r := gin.New()
	chain := append([]gin.HandlerFunc{Auth(testSecret)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		captured = GetRequestContext(c)
		c.Status(http.StatusOK)
	})
	r.GET("/protected", chain...)
	return r, &captured
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r, captured := authTestRouter()

	token := signTestToken(t, jwt.MapClaims{
		"user_id":      float64(42),
		"admin":        false,
		"email":        "awa@example.com",
		"compagnie_id": float64(3),
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if captured.UserID != 42 {
		t.Errorf("user id = %d, want 42", captured.UserID)
	}
	if captured.Email != "awa@example.com" {
		t.Errorf("email = %q", captured.Email)
	}
	if captured.CompagnieID != 3 {
		t.Errorf("compagnie id = %d, want 3", captured.CompagnieID)
	}
}

func TestAuthRejects(t *testing.T) {
	r, _ := authTestRouter()

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + signTestToken(t, jwt.MapClaims{
			"user_id": float64(42),
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})},
		{"no user_id claim", "Bearer " + signTestToken(t, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAuthRejectsWrongSignature(t *testing.T) {
	r, _ := authTestRouter()

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged, err := other.SignedString([]byte("another-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	r, _ := authTestRouter(AdminOnly())

	user := signTestToken(t, jwt.MapClaims{
		"user_id": float64(42),
		"admin":   false,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	admin := signTestToken(t, jwt.MapClaims{
		"user_id": float64(1),
		"admin":   true,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("user status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}
}
