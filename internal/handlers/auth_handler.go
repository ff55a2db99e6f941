package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "monetra/internal/errors"
	"monetra/internal/middleware"
	"monetra/internal/models"
	"monetra/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,max=100"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest carries the second factor of a 2FA login.
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

// VerifyEmailRequest carries an email-verification token, passed as a query
// parameter so the emailed link works directly.
type VerifyEmailRequest struct {
	Token string `form:"token" binding:"required"`
}

// EmailRequest carries a bare email address.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries a reset token and the replacement password.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ChangePasswordRequest carries the current and replacement passwords.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
}

// RevokeSessionRequest names the session to revoke.
type RevokeSessionRequest struct {
	SessionID string `json:"session_id" binding:"required,uuid"`
}

// UserResponse represents the user data in responses.
type UserResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	AvatarURL          string `json:"avatar_url,omitempty"`
	Currency           string `json:"currency"`
	Locale             string `json:"locale"`
	HideBalances       bool   `json:"hide_balances"`
	IsEmailVerified    bool   `json:"is_email_verified"`
	IsTwoFactorEnabled bool   `json:"is_two_factor_enabled"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func newUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		AvatarURL:          user.AvatarURL,
		Currency:           user.Currency,
		Locale:             user.Locale,
		HideBalances:       user.HideBalances,
		IsEmailVerified:    user.IsEmailVerified,
		IsTwoFactorEnabled: user.IsTwoFactorEnabled,
	}
}

// issueSession generates a JWT for the user, sets the auth cookie, and
// writes the auth envelope.
func issueSession(c *gin.Context, user *models.User, message string) {
	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	middleware.SetAuthCookie(c, token)
	respondOK(c, message, AuthResponse{Token: token, User: newUserResponse(user)})
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new account and send an email-verification link
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} Response "User registered"
// @Failure     400 {object} Response "Invalid input or duplicate email"
// @Failure     500 {object} Response "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondCreated(c, "Registration successful. Please check your email to verify your account.", gin.H{
		"user": newUserResponse(user),
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with email and password. Accounts with 2FA enabled receive an emailed code instead of a token.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} Response "Token issued, or 2FA code sent"
// @Failure     400 {object} Response "Invalid input"
// @Failure     401 {object} Response "Invalid credentials"
// @Failure     500 {object} Response "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req.Email, req.Password, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.TwoFactorRequired {
		respondOK(c, "A verification code has been sent to your email.", gin.H{
			"two_factor_required": true,
		})
		return
	}

	issueSession(c, result.User, "Login successful")
}

// VerifyOTP completes a 2FA login
// @Summary     Verify login code
// @Description Complete a 2FA login with the emailed 6-digit code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyOTPRequest true "Email and code"
// @Success     200 {object} Response "Token issued"
// @Failure     400 {object} Response "Invalid input"
// @Failure     401 {object} Response "Invalid or expired code"
// @Router      /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.VerifyLoginOTP(req.Email, req.Code, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondWithError(c, err)
		return
	}

	issueSession(c, user, "Login successful")
}

// Logout clears the auth cookie
// @Summary     Logout
// @Description Clear the authentication cookie
// @Tags        auth
// @Produce     json
// @Success     200 {object} Response "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearAuthCookie(c)
	respondMessage(c, "Logged out successfully")
}

// Me returns the authenticated user
// @Summary     Get current user
// @Description Get the authenticated user's account
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Current user"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "User retrieved", gin.H{"user": newUserResponse(user)})
}

// VerifyEmail confirms an email address
// @Summary     Verify email
// @Description Confirm an email address with the emailed token
// @Tags        auth
// @Produce     json
// @Param       token query string true "Verification token"
// @Success     200 {object} Response "Email verified"
// @Failure     400 {object} Response "Invalid or expired token"
// @Router      /auth/verify-email [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.VerifyEmail(req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Email verified successfully", gin.H{"user": newUserResponse(user)})
}

// ResendVerification re-sends the verification email
// @Summary     Resend verification email
// @Description Issue a fresh verification token and email it
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body EmailRequest true "Account email"
// @Success     200 {object} Response "Verification email sent"
// @Failure     400 {object} Response "Unknown email or already verified"
// @Router      /auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Verification email sent")
}

// ForgotPassword starts a password reset
// @Summary     Request password reset
// @Description Email a password-reset link. Responds identically whether or not the address has an account.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body EmailRequest true "Account email"
// @Success     200 {object} Response "Reset email sent if the account exists"
// @Failure     400 {object} Response "Invalid input"
// @Router      /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "If an account exists for that email, a reset link has been sent.")
}

// ResetPassword completes a password reset
// @Summary     Reset password
// @Description Set a new password using an emailed reset token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Reset token and new password"
// @Success     200 {object} Response "Password updated"
// @Failure     400 {object} Response "Invalid or expired token"
// @Router      /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.ResetPassword(req.Token, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Password reset successfully")
}

// ChangePassword updates the authenticated user's password
// @Summary     Change password
// @Description Replace the password after re-verifying the current one
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChangePasswordRequest true "Current and new password"
// @Success     200 {object} Response "Password updated"
// @Failure     400 {object} Response "Invalid input"
// @Failure     401 {object} Response "Current password incorrect"
// @Router      /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Password changed successfully")
}

// Enable2FA turns on email-based two-factor login
// @Summary     Enable 2FA
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "2FA enabled"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /auth/enable-2fa [post]
func (h *AuthHandler) Enable2FA(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.Enable2FA(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Two-factor authentication enabled", gin.H{"user": newUserResponse(user)})
}

// Disable2FA turns off two-factor login
// @Summary     Disable 2FA
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "2FA disabled"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /auth/disable-2fa [post]
func (h *AuthHandler) Disable2FA(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.Disable2FA(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Two-factor authentication disabled", gin.H{"user": newUserResponse(user)})
}

// ListSessions lists the user's login sessions
// @Summary     List sessions
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Sessions"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /auth/sessions [get]
func (h *AuthHandler) ListSessions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sessions, err := h.userService.ListSessions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Sessions retrieved", gin.H{"sessions": sessions})
}

// RevokeSession deletes one of the user's sessions
// @Summary     Revoke session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RevokeSessionRequest true "Session to revoke"
// @Success     200 {object} Response "Session revoked"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     404 {object} Response "Session not found"
// @Router      /auth/sessions/revoke [post]
func (h *AuthHandler) RevokeSession(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RevokeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.RevokeSession(userID, req.SessionID); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "Session revoked")
}
