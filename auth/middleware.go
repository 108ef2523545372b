package auth

import (
	"net/http"
	"strings"

	"jiahe-site/response"

	"github.com/gin-gonic/gin"
)

const (
	CookieName = "admin_token"
	sessionKey = "admin_session"
)

// RequireAdminAPI guards JSON routes with a Bearer token.
func RequireAdminAPI(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, response.ErrTokenInvalid)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Abort(c, response.ErrTokenInvalid)
			return
		}

		session, err := svc.Authenticate(parts[1])
		if err != nil {
			if err == ErrSessionClosed {
				response.Abort(c, response.ErrSessionClosed)
				return
			}
			response.Abort(c, response.ErrTokenInvalid)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireAdminConsole guards console pages with the session cookie and sends
// anyone without one back to the login form.
func RequireAdminConsole(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ConsoleSession(c, svc); !ok {
			c.Redirect(http.StatusSeeOther, "/admin")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ConsoleSession resolves the cookie session without aborting, and caches it
// on the context.
func ConsoleSession(c *gin.Context, svc *Service) (*Session, bool) {
	if s, ok := CurrentSession(c); ok {
		return s, true
	}
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return nil, false
	}
	session, err := svc.Authenticate(token)
	if err != nil {
		return nil, false
	}
	c.Set(sessionKey, session)
	return session, true
}

func CurrentSession(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}
