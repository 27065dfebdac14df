package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/middleware"
	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
)

// claimsFromContext returns the admin claims set by the JWT middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextAdminKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
