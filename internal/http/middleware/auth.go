package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ticketgate/backend/internal/db"
	"github.com/ticketgate/backend/internal/models"
)

const sessionKey = "session"

// SessionLookup resolves a bearer token. *db.Store implements it.
type SessionLookup interface {
	LookupSession(ctx context.Context, token string) (models.Session, error)
}

// Auth requires a valid bearer session token and stores the resolved
// session on the context.
func Auth(sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "認証が必要です")
			return
		}
		sess, err := sessions.LookupSession(c.Request.Context(), token)
		if errors.Is(err, db.ErrNotFound) {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "セッションが無効です")
			return
		}
		if err != nil {
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "DB_ERROR", "Failed to resolve session")
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireRole lets only the listed roles through. It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "認証が必要です")
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "FORBIDDEN", "この操作を行う権限がありません")
	}
}

func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	sess, ok := v.(models.Session)
	return sess, ok
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
