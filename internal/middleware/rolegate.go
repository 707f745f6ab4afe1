package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/models"
	"github.com/greenfield-academy/portal/pkg/response"
)

// RequireRoles allows the request through only when the session role is
// in the allowed set. Everyone else bounces back to their dashboard with
// a warning; the attendance API gets the same treatment as the pages.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.RedirectFlash(c, "/login", "Please sign in to continue.")
			c.Abort()
			return
		}

		principal := value.(models.Principal)
		if _, ok := allowed[principal.Role]; !ok {
			response.RedirectFlash(c, "/dashboard", "You do not have permission to view that page.")
			c.Abort()
			return
		}

		c.Next()
	}
}
