package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// CasbinMW enforces role policies on the admin and user routes.
type CasbinMW struct {
	enforcer *casbin.Enforcer
}

// NewCasbinMW creates new casbin middleware
func NewCasbinMW(enforcer *casbin.Enforcer) *CasbinMW {
	return &CasbinMW{enforcer: enforcer}
}

// Enforce returns the authorization middleware. A user always passes for
// their own /users/:id record; everything else goes through the enforcer.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, userExists := c.Get("user_id")
		role, roleExists := c.Get("user_role")
		if !userExists || !roleExists {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized", "status_code": http.StatusUnauthorized})
			c.Abort()
			return
		}

		if c.FullPath() == "/users/:id" && c.Param("id") == userID.(string) {
			c.Next()
			return
		}

		allowed, err := mw.enforcer.Enforce(role.(string), c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "authorization check failed", "status_code": http.StatusInternalServerError})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusForbidden, gin.H{"detail": "access denied", "status_code": http.StatusForbidden})
			c.Abort()
			return
		}
		c.Next()
	}
}
