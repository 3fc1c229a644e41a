package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/model"
	"taskboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// PrincipalKey is the gin context key holding the authenticated Principal
const PrincipalKey = "authPrincipal"

// JWTAuthMiddleware creates a middleware for JWT authentication. It is the
// first check on every protected route; handlers behind it may assume a
// validated principal in the context.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			return
		}

		tokenString := parts[1]
		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(PrincipalKey, model.Principal{UserID: claims.UserID, Role: claims.Role})

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal set by JWTAuthMiddleware
func GetPrincipal(c *gin.Context) (model.Principal, bool) {
	val, exists := c.Get(PrincipalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := val.(model.Principal)
	return principal, ok
}
