package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greenfield-academy/portal/internal/middleware"
	"github.com/greenfield-academy/portal/internal/models"
)

func principalFromContext(c *gin.Context) *models.Principal {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	principal, ok := value.(models.Principal)
	if !ok {
		return nil
	}
	return &principal
}

func clientMeta(c *gin.Context) (ip, userAgent string) {
	return c.ClientIP(), c.Request.UserAgent()
}
