package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	claimsKey = "claims"
)

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(tokens *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// OptionalAuth identifies the user when a valid token is present and lets everyone through
func OptionalAuth(tokens *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.ValidateToken(raw); err == nil {
				c.Set(userIDKey, claims.Subject)
				c.Set(claimsKey, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" for anonymous requests
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// IsAuthenticated reports whether the request carried a valid token
func IsAuthenticated(c *gin.Context) bool {
	return UserID(c) != ""
}

func ClaimsFrom(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*Claims)
	return claims
}
