package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

func unauthorized(c *gin.Context, detail string) {
	c.JSON(http.StatusUnauthorized, gin.H{"detail": detail, "status_code": http.StatusUnauthorized})
	c.Abort()
}

// AuthMiddleware validates the access token and checks the session is still
// alive. The check fails closed: when the session cache is unreachable the
// request is rejected, never admitted on the token alone.
func AuthMiddleware(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "authentication required")
			return
		}

		claims, err := tokenSvc.ValidateAccessToken(token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				unauthorized(c, "token expired")
			case errors.Is(err, domain.ErrTokenMalformed):
				unauthorized(c, "malformed token")
			default:
				unauthorized(c, "invalid token")
			}
			return
		}

		session, err := sessionRepo.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrDependencyUnavailable) {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"detail":      "service temporarily unavailable",
					"status_code": http.StatusServiceUnavailable,
				})
				c.Abort()
				return
			}
			unauthorized(c, "session expired")
			return
		}
		if session.UserID != claims.UserID {
			unauthorized(c, "session user mismatch")
			return
		}

		c.Set("user_id", strconv.FormatUint(uint64(claims.UserID), 10))
		c.Set("user_role", claims.Role)
		c.Set("session_id", claims.SessionID)
		c.Next()
	}
}

// bearerToken extracts the access token from the Authorization header or,
// failing that, the access cookie.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}
