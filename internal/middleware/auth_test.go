package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/esilogis/intervention-service/internal/auth"
	"github.com/esilogis/intervention-service/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authSvc := auth.NewService("test-secret", time.Hour)
	r := gin.New()
	protected := r.Group("/p")
	protected.Use(Authenticate(authSvc))
	protected.GET("/me", func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})
	protected.GET("/admin", RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, authSvc
}

func token(t *testing.T, svc *auth.Service, role model.Role) string {
	t.Helper()
	tok, err := svc.GenerateToken(&model.UserAccount{ID: 1, Email: "u@esilogis.local", Role: role})
	require.NoError(t, err)
	return tok
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	r, _ := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatePassesValidToken(t *testing.T) {
	r, svc := setupRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, svc, model.RoleUser))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u@esilogis.local")
}

func TestRequireRole(t *testing.T) {
	r, svc := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, svc, model.RoleUser))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/p/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, svc, model.RoleAdmin))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
