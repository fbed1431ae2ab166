package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const middlewareSecret = "secret"

// whoami echoes the identity the middleware stored.
func whoami(c *gin.Context) {
	id, ok := GetIdentity(c)
	if !ok {
		c.Status(http.StatusTeapot)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "role": id.Role})
}

func newProtectedRouter(roles ...Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(middlewareSecret)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	r.GET("/me", append(chain, whoami)...)
	return r
}

func bearerFor(t *testing.T, id Identity) string {
	t.Helper()
	token, err := Keys{AccessSecret: middlewareSecret}.Access(id, "someone@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	pair, err := Keys{AccessSecret: middlewareSecret, RefreshSecret: middlewareSecret}.
		Issue(Identity{UserID: 1, Role: RolePatron}, "budi@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, `{"error":"Invalid authorization header format"}`},
		{"empty token", "Bearer ", http.StatusUnauthorized, `{"error":"Token is empty"}`},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, `{"error":"Invalid or malformed token"}`},
		{"refresh token", "Bearer " + pair.Refresh, http.StatusUnauthorized, `{"error":"Access token required"}`},
		{"operator", bearerFor(t, Identity{UserID: 9, Role: RoleOperator}), http.StatusOK, `{"user_id":9,"role":"operator"}`},
	}

	router := newProtectedRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		caller  Identity
		allowed []Role
		status  int
	}{
		{"operator route, operator", Identity{UserID: 1, Role: RoleOperator}, []Role{RoleOperator}, http.StatusOK},
		{"operator route, member", Identity{UserID: 2, Role: RoleMember}, []Role{RoleOperator}, http.StatusForbidden},
		{"any customer", Identity{UserID: 3, Role: RoleMember}, []Role{RolePatron, RoleMember}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", bearerFor(t, tt.caller))
			w := httptest.NewRecorder()
			newProtectedRouter(tt.allowed...).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, value := range map[string]any{"missing": nil, "string role": "operator"} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if value != nil {
				c.Set(ctxUserRole, value)
			}

			RequireRole(RoleOperator)(c)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestIdentityFromContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetIdentity(c)
	assert.False(t, ok)

	c.Set(ctxUserID, "7")
	_, ok = GetUserID(c)
	assert.False(t, ok, "non-int ids are rejected")

	SetIdentity(c, Identity{UserID: 3, Role: RoleMember})
	id, ok := GetIdentity(c)
	assert.True(t, ok)
	assert.Equal(t, Identity{UserID: 3, Role: RoleMember}, id)
}
