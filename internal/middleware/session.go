package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/service"
	"github.com/greenfield-academy/portal/pkg/config"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
	"github.com/greenfield-academy/portal/pkg/response"
)

// ContextUserKey is the gin context key storing the session principal.
const ContextUserKey = "currentUser"

// Session protects routes by requiring a valid session cookie. Requests
// under /api receive a JSON 401; everything else is redirected to the
// login page.
func Session(authService *service.AuthService, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.CookieName)
		if err != nil || token == "" {
			reject(c, cfg, appErrors.ErrUnauthorized)
			return
		}

		principal, err := authService.VerifySession(c.Request.Context(), token)
		if err != nil {
			reject(c, cfg, err)
			return
		}

		c.Set(ContextUserKey, *principal)
		c.Next()
	}
}

func reject(c *gin.Context, cfg config.SessionConfig, err error) {
	// A stale or tampered cookie is useless, drop it.
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)

	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.Error(c, err)
	} else {
		response.RedirectFlash(c, "/login", "Please sign in to continue.")
	}
	c.Abort()
}
