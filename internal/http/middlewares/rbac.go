package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route on one exact role.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return m.RequireAnyRole(required)
}

// RequireAnyRole gates a route on membership in a role set. Runs after
// RequireAuth; a missing identity context is a 401, a role outside the
// set is a 403.
func (m *AuthMiddleware) RequireAnyRole(required ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(required))

	for _, role := range required {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role for this operation",
				},
			})
			return
		}
		c.Next()
	}
}
