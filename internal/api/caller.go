package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warnetbook/internal/auth"
)

// Caller returns the authenticated identity, writing a 401 when there is none.
func Caller(c *gin.Context) (auth.Identity, bool) {
	id, ok := auth.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return auth.Identity{}, false
	}
	return id, true
}
