package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	ctxUserID    = "user_id"
	ctxUserEmail = "user_email"
	ctxUserRole  = "user_role"
)

// AuthMiddleware verifies the bearer access token and stores the caller's
// identity on the gin context.
func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	keys := Keys{AccessSecret: accessTokenSecret}

	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		switch {
		case c.GetHeader("Authorization") == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		case !found || scheme != "Bearer":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is empty"})
			return
		}

		claims, err := keys.ParseAccess(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": tokenErrorMessage(err)})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserEmail, claims.Email)
		c.Set(ctxUserRole, claims.Role)

		c.Next()
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, ErrWrongTokenKind):
		return "Access token required"
	default:
		return "Invalid or malformed token"
	}
}

// RequireRole aborts with 403 unless the caller holds one of roles.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ctxUserRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User role not found"})
			return
		}

		role, ok := value.(Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid role type"})
			return
		}

		if !lo.Contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	return id, ok
}

// GetIdentity returns the caller set by AuthMiddleware.
func GetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return Identity{}, false
	}

	role, ok := c.Get(ctxUserRole)
	if !ok {
		return Identity{}, false
	}

	r, ok := role.(Role)
	if !ok {
		return Identity{}, false
	}

	return Identity{UserID: id, Role: r}, true
}

// SetIdentity stores id on the context the way AuthMiddleware does. Used by
// handler tests to stand in for a verified token.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ctxUserID, id.UserID)
	c.Set(ctxUserRole, id.Role)
}
