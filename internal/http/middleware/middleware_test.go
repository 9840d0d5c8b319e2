package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ticketgate/backend/internal/db"
	"github.com/ticketgate/backend/internal/models"
)

type fakeSessions map[string]models.Session

func (f fakeSessions) LookupSession(_ context.Context, token string) (models.Session, error) {
	s, ok := f[token]
	if !ok {
		return models.Session{}, db.ErrNotFound
	}
	return s, nil
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	sessions := fakeSessions{
		"front-token":   {UserID: "u1", Role: models.RoleFront},
		"builder-token": {UserID: "u2", Role: models.RoleBuilder},
	}
	authed := r.Group("", Auth(sessions))
	authed.GET("/me", func(c *gin.Context) {
		sess, _ := SessionFrom(c)
		c.String(http.StatusOK, sess.UserID)
	})
	authed.GET("/front-only", RequireRole(models.RoleFront, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", AdminKey("secret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newEngine()

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", map[string]string{"Authorization": "Bearer nope"}).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", map[string]string{"Authorization": "Basic front-token"}).Code)

	w := do(r, "/me", map[string]string{"Authorization": "Bearer front-token"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireRole(t *testing.T) {
	r := newEngine()
	assert.Equal(t, http.StatusNoContent, do(r, "/front-only", map[string]string{"Authorization": "Bearer front-token"}).Code)
	w := do(r, "/front-only", map[string]string{"Authorization": "Bearer builder-token"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)
}

func TestAdminKey(t *testing.T) {
	r := newEngine()
	assert.Equal(t, http.StatusUnauthorized, do(r, "/admin", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", map[string]string{"X-Admin-Key": "secret"}).Code)
}

func TestRequestIDPassthrough(t *testing.T) {
	r := newEngine()
	w := do(r, "/admin", map[string]string{"X-Request-Id": "abc", "X-Admin-Key": "secret"})
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
