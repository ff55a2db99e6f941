package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "monetra/internal/errors"
	"monetra/internal/middleware"
	"monetra/internal/services"
	"monetra/internal/storage"
)

// maxAvatarSize caps avatar uploads at 5 MiB.
const maxAvatarSize = 5 << 20

// UserHandler handles profile and account-management requests.
type UserHandler struct {
	userService services.UserServicer
	avatarStore storage.AvatarStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService services.UserServicer, avatarStore storage.AvatarStore) *UserHandler {
	return &UserHandler{userService: userService, avatarStore: avatarStore}
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// UpdatePreferencesRequest carries optional preference changes; omitted
// fields keep their stored values.
type UpdatePreferencesRequest struct {
	Currency     *string `json:"currency" binding:"omitempty,iso4217"`
	Locale       *string `json:"locale" binding:"omitempty,max=16"`
	HideBalances *bool   `json:"hide_balances"`
}

// RequestEmailChangeRequest names the address the account should move to.
type RequestEmailChangeRequest struct {
	NewEmail string `json:"new_email" binding:"required,email,max=255"`
}

// VerifyEmailChangeRequest carries the code sent to the pending address.
type VerifyEmailChangeRequest struct {
	Code string `json:"code" binding:"required,otp"`
}

// DeleteAccountRequest re-confirms the password before deletion.
type DeleteAccountRequest struct {
	Password string `json:"password" binding:"required"`
}

// GetProfile returns the authenticated user's profile
// @Summary     Get profile
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} Response "Profile retrieved"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
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

	respondOK(c, "Profile retrieved", gin.H{"user": newUserResponse(user)})
}

// UpdateProfile updates the user's display name
// @Summary     Update profile
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} Response "Profile updated"
// @Failure     400 {object} Response "Invalid input"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Profile updated", gin.H{"user": newUserResponse(user)})
}

// UpdatePreferences updates currency, locale, and balance visibility
// @Summary     Update preferences
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePreferencesRequest true "Preference fields"
// @Success     200 {object} Response "Preferences updated"
// @Failure     400 {object} Response "Invalid input"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /users/preferences [put]
func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.UpdatePreferences(userID, req.Currency, req.Locale, req.HideBalances)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Preferences updated", gin.H{"user": newUserResponse(user)})
}

// UploadAvatar stores a new avatar image
// @Summary     Upload avatar
// @Description Upload an avatar image (multipart field "avatar", max 5 MiB)
// @Tags        users
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       avatar formData file true "Avatar image"
// @Success     200 {object} Response "Avatar updated"
// @Failure     400 {object} Response "Missing or oversized file"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     500 {object} Response "Upload failed"
// @Router      /users/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "avatar file is required"))
		return
	}
	if header.Size > maxAvatarSize {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "avatar must be at most 5 MiB"))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	url, err := h.avatarStore.Upload(c.Request.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	user, err := h.userService.SetAvatarURL(userID, url)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Avatar updated", gin.H{"user": newUserResponse(user)})
}

// RequestEmailChange stages a new address and emails it a code
// @Summary     Request email change
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RequestEmailChangeRequest true "New address"
// @Success     200 {object} Response "Code sent to the new address"
// @Failure     400 {object} Response "Address unchanged or already taken"
// @Failure     401 {object} Response "Unauthorized"
// @Failure     500 {object} Response "Email delivery failed"
// @Router      /users/request-email-change [post]
func (h *UserHandler) RequestEmailChange(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RequestEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.RequestEmailChange(c.Request.Context(), userID, req.NewEmail); err != nil {
		respondWithError(c, err)
		return
	}

	respondMessage(c, "A confirmation code has been sent to the new address.")
}

// VerifyEmailChange commits a staged email change
// @Summary     Verify email change
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body VerifyEmailChangeRequest true "Confirmation code"
// @Success     200 {object} Response "Email updated"
// @Failure     400 {object} Response "Invalid or expired code"
// @Failure     401 {object} Response "Unauthorized"
// @Router      /users/verify-email-change [post]
func (h *UserHandler) VerifyEmailChange(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req VerifyEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.userService.VerifyEmailChange(userID, req.Code)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondOK(c, "Email address updated", gin.H{"user": newUserResponse(user)})
}

// DeleteAccount removes the account and all owned data
// @Summary     Delete account
// @Description Permanently delete the account, its categories, transactions, and sessions
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body DeleteAccountRequest true "Password confirmation"
// @Success     200 {object} Response "Account deleted"
// @Failure     401 {object} Response "Password incorrect"
// @Router      /users/account [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.userService.DeleteAccount(userID, req.Password); err != nil {
		respondWithError(c, err)
		return
	}

	middleware.ClearAuthCookie(c)
	respondMessage(c, "Account deleted")
}
