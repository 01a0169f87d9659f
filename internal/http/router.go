package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/http/handlers"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/http/middleware"
)

// BuildRouter wires every route of the service.
func BuildRouter(
	ah *handlers.AuthHandlers,
	oh *handlers.OTPHandlers,
	uh *handlers.UserHandlers,
	authmw gin.HandlerFunc,
	cb *middleware.CasbinMW,
	logger zerolog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/send-otp", oh.Send)
	auth.POST("/verify-otp", oh.Verify)
	auth.POST("/resend-otp", oh.Resend)
	auth.POST("/forgot-password", ah.ForgotPassword)
	auth.GET("/verify-reset-token/:token", ah.VerifyResetToken)
	auth.POST("/reset-password", ah.ResetPassword)
	auth.POST("/forgot-password-otp", ah.ForgotPasswordOTP)
	auth.POST("/reset-password-otp", ah.ResetPasswordOTP)

	authed := r.Group("/", authmw)
	authed.POST("/auth/logout", ah.Logout)
	authed.POST("/auth/logout-all", ah.LogoutAll)
	authed.POST("/auth/change-password", ah.ChangePassword)
	authed.GET("/users/me", uh.Me)
	authed.PATCH("/users/me", uh.UpdateMe)

	enforced := r.Group("/", authmw, cb.Enforce())
	enforced.GET("/users/:id", uh.GetUser)
	enforced.GET("/admin/users", uh.ListUsers)
	enforced.POST("/admin/users/:id/activate", uh.ActivateUser)
	enforced.POST("/admin/users/:id/deactivate", uh.DeactivateUser)

	return r
}
