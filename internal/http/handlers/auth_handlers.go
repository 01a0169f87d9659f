package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/internal/config"
)

// AuthHandlers serves the authentication endpoints.
type AuthHandlers struct {
	authSvc domain.AuthService
	cfg     *config.Config
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, cfg *config.Config) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc, cfg: cfg}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=64"`
	Phone    string `json:"phone,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login request. Identifier accepts an email,
// username or phone number.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshRequest represents a token refresh request. The token may come from
// the body or from the refresh cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ForgotPasswordRequest starts the link-based reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the link-based reset flow
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ForgotPasswordOTPRequest starts the OTP-based reset flow
type ForgotPasswordOTPRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Channel    string `json:"channel" binding:"required,oneof=email whatsapp"`
}

// ResetPasswordOTPRequest completes the OTP-based reset flow
type ResetPasswordOTPRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Channel     string `json:"channel" binding:"required,oneof=email whatsapp"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Register handles user registration. No session is opened: the account must
// verify its email first.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please verify your email.",
		"user":    userProfile(user),
	})
}

// Login handles user login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), domain.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		ClientIP:   c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, result, req.RememberMe)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    result.ExpiresIn,
		"session_id":    result.SessionID,
		"user":          userProfile(result.User),
	})
}

// Refresh rotates the refresh token and issues a new pair.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body", "status_code": http.StatusBadRequest})
		return
	}

	token := req.RefreshToken
	if token == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			token = cookie
		}
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "refresh token required", "status_code": http.StatusUnauthorized})
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.clearAuthCookies(c)
		respondError(c, err)
		return
	}

	remember := false
	if _, err := c.Cookie("refresh_token"); err == nil {
		remember = true
	}
	h.setAuthCookies(c, result, remember)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "bearer",
		"expires_in":    result.ExpiresIn,
	})
}

// Logout revokes the current session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "no active session", "status_code": http.StatusBadRequest})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), sessionID.(string)); err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// LogoutAll revokes every session of the current user.
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized", "status_code": http.StatusUnauthorized})
		return
	}

	count, err := h.authSvc.LogoutAll(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{
		"message":          "All sessions revoked",
		"sessions_revoked": count,
	})
}

// ChangePassword updates the password of the authenticated user and revokes
// every session.
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized", "status_code": http.StatusUnauthorized})
		return
	}

	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Password changed. Please log in again."})
}

// ForgotPassword starts the link-based reset flow. The response is identical
// whether or not the email is registered.
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email, h.cfg.ResetURL); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset link has been sent."})
}

// VerifyResetToken checks a reset token without consuming it, so the client
// can show the form only for live links.
func (h *AuthHandlers) VerifyResetToken(c *gin.Context) {
	token := c.Param("token")

	user, err := h.authSvc.VerifyResetToken(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "email": user.Email})
}

// ResetPassword completes the link-based reset flow.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset. Please log in."})
}

// ForgotPasswordOTP starts the OTP-based reset flow.
func (h *AuthHandlers) ForgotPasswordOTP(c *gin.Context) {
	var req ForgotPasswordOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	delivery, err := h.authSvc.RequestPasswordResetOTP(c.Request.Context(), req.Identifier, domain.OTPChannel(req.Channel))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Reset code sent",
		"channel":    delivery.Channel,
		"expires_in": delivery.ExpiresIn,
	})
}

// ResetPasswordOTP verifies the code and commits the new password in one call.
func (h *AuthHandlers) ResetPasswordOTP(c *gin.Context) {
	var req ResetPasswordOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authSvc.ResetPasswordOTP(c.Request.Context(), req.Identifier, domain.OTPChannel(req.Channel), req.Code, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset. Please log in."})
}

func (h *AuthHandlers) setAuthCookies(c *gin.Context, result *domain.AuthResult, rememberMe bool) {
	sessionTTL := h.cfg.SessionTTL
	if rememberMe {
		sessionTTL = h.cfg.SessionRememberMeTTL
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "access_token",
		Value:    result.AccessToken,
		Path:     "/",
		MaxAge:   int(h.cfg.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "session_id",
		Value:    result.SessionID,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	// The refresh cookie is scoped to the refresh endpoint and only set for
	// remember-me sessions.
	if rememberMe {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     "refresh_token",
			Value:    result.RefreshToken,
			Path:     "/auth/refresh",
			MaxAge:   int(h.cfg.RefreshTTL.Seconds()),
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (h *AuthHandlers) clearAuthCookies(c *gin.Context) {
	for _, cookie := range []struct{ name, path string }{
		{"access_token", "/"},
		{"session_id", "/"},
		{"refresh_token", "/auth/refresh"},
	} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookie.name,
			Value:    "",
			Path:     cookie.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
