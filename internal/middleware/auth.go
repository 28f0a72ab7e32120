package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/session"
)

// AuthMiddleware validates the Authorization bearer token and stores the
// caller's identity on the gin context as "userID" and "role".
func AuthMiddleware(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Pull the token out of the Authorization header.
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be a Bearer token"})
			return
		}

		// 2. Validate it and extract the subject.
		userID, role, err := session.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. Make the identity available to every handler downstream.
		c.Set("userID", userID)
		c.Set("role", role)
		c.Set("bearerToken", tokenString)
		c.Next()
	}
}

// AdminMiddleware gates a route group to admin users. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != session.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) int64 {
	v, _ := c.Get("userID")
	id, _ := v.(int64)
	return id
}

// Role reads the authenticated role set by AuthMiddleware.
func Role(c *gin.Context) string {
	v, _ := c.Get("role")
	role, _ := v.(string)
	return role
}

// BearerToken reads the raw token set by AuthMiddleware.
func BearerToken(c *gin.Context) string {
	v, _ := c.Get("bearerToken")
	token, _ := v.(string)
	return token
}
