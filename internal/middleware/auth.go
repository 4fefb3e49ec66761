package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hospitalms/web/internal/models"
	"hospitalms/web/internal/session"
)

const sessionContextKey = "current_session"

// LoadSession resolves the browser's session for every request. Anonymous
// requests pass through with no context entry; a cookie that fails to
// resolve is cleared so the browser stops presenting it.
func LoadSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookieValue, err := c.Cookie(manager.CookieName())
		if err != nil || cookieValue == "" {
			c.Next()
			return
		}

		sess, err := manager.Load(c.Request.Context(), cookieValue)
		if err != nil {
			c.SetCookie(manager.CookieName(), "", -1, "/", "", manager.CookieSecure(), true)
			c.Next()
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// CurrentSession returns the authenticated session for the request, if any.
func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(sessionContextKey)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := val.(models.Session)
	if !ok || !sess.IsAuthenticated() {
		return models.Session{}, false
	}
	return sess, true
}

// RequireAuth gates a route group to authenticated users; everyone else is
// sent to the login view.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles further gates a route to the given roles. The mismatch
// redirect goes to the unauthorized view, not the login view: the user is
// known, just under-privileged.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		if _, ok := roleSet[sess.User.Role]; !ok {
			c.Redirect(http.StatusSeeOther, "/unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}
