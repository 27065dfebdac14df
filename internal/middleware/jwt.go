package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rootwork-enrollment-api/internal/models"
	"github.com/noah-isme/rootwork-enrollment-api/internal/service"
	appErrors "github.com/noah-isme/rootwork-enrollment-api/pkg/errors"
	"github.com/noah-isme/rootwork-enrollment-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the signed-in admin's claims.
const ContextAdminKey = "currentAdmin"

// JWT requires a bearer access token issued to a staff account.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "staff sign-in required"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if claims.AdminID == "" || !knownRole(claims.Role) {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "token is not bound to a staff account"))
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func knownRole(role models.AdminRole) bool {
	return role == models.RoleAdmin || role == models.RoleSuperAdmin
}
