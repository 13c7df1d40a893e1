package handler

import (
	"github.com/gin-gonic/gin"

	"legalresearch/internal/transport/http/middleware"
)

func getUserIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func getOrgIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(middleware.ContextOrgIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func getRoleFromContext(c *gin.Context) string {
	v, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return ""
	}
	role, _ := v.(string)
	return role
}
