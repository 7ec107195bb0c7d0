package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/iut-charges-api/internal/models"
	appErrors "github.com/noah-isme/iut-charges-api/pkg/errors"
)

type validatorStub struct {
	tokens map[string]*models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := v.tokens[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := validatorStub{tokens: map[string]*models.JWTClaims{
		"admin-token":  {UserID: 1, Role: models.RoleAdmin},
		"viewer-token": {UserID: 2, Role: models.RoleViewer},
	}}

	r := gin.New()
	api := r.Group("/api")
	api.Use(JWT(tokens), WritesRequire(models.RoleAdmin))
	api.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
	api.POST("/rooms", func(c *gin.Context) { c.Status(http.StatusCreated) })
	api.DELETE("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func call(r *gin.Engine, method, path, auth string) int {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	r := newProtectedRouter()

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/rooms", ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/rooms", "Token admin-token"))
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/rooms", "Bearer "))
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/rooms", "Bearer forged"))
}

func TestReadsAllowedForAnyAuthenticatedRole(t *testing.T) {
	r := newProtectedRouter()

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/rooms", "Bearer viewer-token"))
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/rooms", "bearer admin-token"))
}

func TestWritesRequireAdmin(t *testing.T) {
	r := newProtectedRouter()

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/rooms", "Bearer viewer-token"))
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodDelete, "/api/rooms/3", "Bearer viewer-token"))
	assert.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/rooms", "Bearer admin-token"))
	assert.Equal(t, http.StatusNoContent, call(r, http.MethodDelete, "/api/rooms/3", "Bearer admin-token"))
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/admin", ""))
}
