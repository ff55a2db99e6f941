package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"monetra/internal/email"
	apperrors "monetra/internal/errors"
	"monetra/internal/models"
	"monetra/internal/token"
)

// bcryptCost is the adaptive hashing work factor. Passwords are hashed only
// when the password field changes, never on unrelated saves.
const bcryptCost = 12

// userService handles the account and credential lifecycle.
type userService struct {
	db     *gorm.DB
	mailer *email.Mailer
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, mailer *email.Mailer) UserServicer {
	return &userService{db: db, mailer: mailer}
}

// Register creates an unverified account and emails a verification link.
// The unique index on email is the source of truth for duplicates; the
// pre-check only gives a friendlier fast path.
func (s *userService) Register(ctx context.Context, emailAddr, password, name string) (*models.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if emailAddr == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "email and password are required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", emailAddr).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	verificationToken, err := token.NewToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiry := time.Now().Add(token.VerificationTokenTTL)

	user := &models.User{
		Email:                   emailAddr,
		Password:                string(hashedPassword),
		Name:                    name,
		EmailVerificationToken:  verificationToken,
		EmailVerificationExpiry: &expiry,
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, verificationToken); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrEmailDelivery, err)
	}

	return user, nil
}

// VerifyEmail consumes a verification token. Absent, mismatched, and expired
// tokens all fail with the same error.
func (s *userService) VerifyEmail(verificationToken string) (*models.User, error) {
	if verificationToken == "" {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	var user models.User
	if err := s.db.Where("email_verification_token = ?", verificationToken).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidOrExpiredToken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.EmailVerificationExpiry == nil || time.Now().After(*user.EmailVerificationExpiry) {
		return nil, apperrors.ErrInvalidOrExpiredToken
	}

	updates := map[string]interface{}{
		"is_email_verified":         true,
		"email_verification_token":  "",
		"email_verification_expiry": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// ResendVerification regenerates the verification pair, invalidating any
// previously issued token, and resends the email.
func (s *userService) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.GetUserByEmail(emailAddr)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "email is already verified")
	}

	verificationToken, err := token.NewToken()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiry := time.Now().Add(token.VerificationTokenTTL)

	updates := map[string]interface{}{
		"email_verification_token":  verificationToken,
		"email_verification_expiry": expiry,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, verificationToken); err != nil {
		return apperrors.Wrap(apperrors.ErrEmailDelivery, err)
	}
	return nil
}

// Login verifies the primary credential. With 2FA enabled it issues a login
// OTP and defers the session to VerifyLoginOTP; otherwise it records the
// login and the caller issues the bearer token.
func (s *userService) Login(ctx context.Context, emailAddr, password, userAgent, ipAddress string) (*LoginResult, error) {
	user, err := s.GetUserByEmail(emailAddr)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsTwoFactorEnabled {
		otp, err := token.NewOTP()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expiry := time.Now().Add(token.OTPTTL)

		updates := map[string]interface{}{
			"login_otp":        otp,
			"login_otp_expiry": expiry,
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.mailer.SendLoginOTP(ctx, user.Email, user.Name, otp); err != nil {
			// Fail closed: no pending OTP survives a failed send.
			s.clearLoginOTP(user)
			return nil, apperrors.Wrap(apperrors.ErrEmailDelivery, err)
		}

		return &LoginResult{User: user, TwoFactorRequired: true}, nil
	}

	if err := s.recordLogin(user, userAgent, ipAddress); err != nil {
		return nil, err
	}
	return &LoginResult{User: user}, nil
}

// VerifyLoginOTP completes a 2FA login. An absent pending code, an expired
// code, and a mismatched code all fail identically; a correct code works
// exactly once.
func (s *userService) VerifyLoginOTP(emailAddr, code, userAgent, ipAddress string) (*models.User, error) {
	user, err := s.GetUserByEmail(emailAddr)
	if err != nil {
		return nil, apperrors.ErrInvalidOrExpiredOTP
	}

	if user.LoginOTP == "" ||
		user.LoginOTPExpiry == nil || time.Now().After(*user.LoginOTPExpiry) ||
		user.LoginOTP != code {
		return nil, apperrors.ErrInvalidOrExpiredOTP
	}

	if err := s.clearLoginOTP(user); err != nil {
		return nil, err
	}
	if err := s.recordLogin(user, userAgent, ipAddress); err != nil {
		return nil, err
	}
	return user, nil
}

// Enable2FA turns on OTP-gated login for the account.
func (s *userService) Enable2FA(userID string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("is_two_factor_enabled", true).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// Disable2FA turns off OTP-gated login and clears any pending login code.
func (s *userService) Disable2FA(userID string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"is_two_factor_enabled": false,
		"login_otp":             "",
		"login_otp_expiry":      nil,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// ForgotPassword issues a reset token and emails a reset link. The response
// is uniform whether or not the address matches an account, to avoid
// account enumeration.
func (s *userService) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.GetUserByEmail(emailAddr)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.ErrUserNotFound.Code {
			return nil
		}
		return err
	}

	resetToken, err := token.NewToken()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiry := time.Now().Add(token.ResetTokenTTL)

	updates := map[string]interface{}{
		"password_reset_token":  resetToken,
		"password_reset_expiry": expiry,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, resetToken); err != nil {
		return apperrors.Wrap(apperrors.ErrEmailDelivery, err)
	}
	return nil
}

// ResetPassword consumes a reset token exactly once and re-hashes the secret.
func (s *userService) ResetPassword(resetToken, newPassword string) error {
	if resetToken == "" {
		return apperrors.ErrInvalidOrExpiredToken
	}
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new password is required")
	}

	var user models.User
	if err := s.db.Where("password_reset_token = ?", resetToken).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidOrExpiredToken
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user.PasswordResetExpiry == nil || time.Now().After(*user.PasswordResetExpiry) {
		return apperrors.ErrInvalidOrExpiredToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"password":              string(hashedPassword),
		"password_reset_token":  "",
		"password_reset_expiry": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ChangePassword re-hashes the secret after verifying the current one.
func (s *userService) ChangePassword(userID, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(user).Update("password", string(hashedPassword)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserByEmail retrieves a user by normalized email
func (s *userService) GetUserByEmail(emailAddr string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(emailAddr))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// UpdateProfile updates the user's display name.
func (s *userService) UpdateProfile(userID, name string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := s.db.Model(user).Update("name", name).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return user, nil
}

// UpdatePreferences updates display preferences; nil fields are left unchanged.
func (s *userService) UpdatePreferences(userID string, currency, locale *string, hideBalances *bool) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if currency != nil {
		updates["currency"] = *currency
	}
	if locale != nil {
		updates["locale"] = *locale
	}
	if hideBalances != nil {
		updates["hide_balances"] = *hideBalances
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return user, nil
}

// SetAvatarURL stores the uploaded avatar's URL.
func (s *userService) SetAvatarURL(userID, url string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("avatar_url", url).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// RequestEmailChange stages a pending email plus OTP pair and sends the code
// to the new address. If the send fails the staged state is rolled back so
// no half-migrated account survives: at most one side effect.
func (s *userService) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if newEmail == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "new email is required")
	}
	if newEmail == user.Email {
		return apperrors.ErrSameEmail
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", newEmail).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrEmailTaken
	}

	otp, err := token.NewOTP()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expiry := time.Now().Add(token.OTPTTL)

	updates := map[string]interface{}{
		"pending_email":           newEmail,
		"email_change_otp":        otp,
		"email_change_otp_expiry": expiry,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.mailer.SendEmailChangeOTP(ctx, newEmail, user.Name, otp); err != nil {
		// Compensating action: clear the staged state before surfacing the failure.
		rollback := map[string]interface{}{
			"pending_email":           "",
			"email_change_otp":        "",
			"email_change_otp_expiry": nil,
		}
		if rbErr := s.db.Model(user).Updates(rollback).Error; rbErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, rbErr)
		}
		return apperrors.Wrap(apperrors.ErrEmailDelivery, err)
	}
	return nil
}

// VerifyEmailChange consumes the OTP and commits the pending email into the
// primary email field. The address arrives re-verified since the code was
// delivered to it.
func (s *userService) VerifyEmailChange(userID, code string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if user.EmailChangeOTP == "" || user.PendingEmail == "" ||
		user.EmailChangeOTPExpiry == nil || time.Now().After(*user.EmailChangeOTPExpiry) ||
		user.EmailChangeOTP != code {
		return nil, apperrors.ErrInvalidOrExpiredOTP
	}

	updates := map[string]interface{}{
		"email":                   user.PendingEmail,
		"is_email_verified":       true,
		"pending_email":           "",
		"email_change_otp":        "",
		"email_change_otp_expiry": nil,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// DeleteAccount removes the user and everything it owns. The password is
// re-verified immediately before this destructive operation, and the cascade
// runs inside a single database transaction so a failure leaves no orphans.
func (s *userService) DeleteAccount(userID, password string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !s.VerifyPassword(user, password) {
		return apperrors.ErrInvalidCredentials
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListSessions returns the self-reported client contexts recorded at login.
func (s *userService) ListSessions(userID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return sessions, nil
}

// RevokeSession removes a session row. The bearer token issued for that
// session stays valid until its embedded expiry.
func (s *userService) RevokeSession(userID, sessionID string) error {
	result := s.db.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&models.Session{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// recordLogin stamps LastLoginAt and stores the client context.
func (s *userService) recordLogin(user *models.User, userAgent, ipAddress string) error {
	now := time.Now()
	if err := s.db.Model(user).Update("last_login_at", now).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	session := &models.Session{
		UserID:    user.ID,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := s.db.Create(session).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// clearLoginOTP wipes the login OTP pair.
func (s *userService) clearLoginOTP(user *models.User) error {
	updates := map[string]interface{}{
		"login_otp":        "",
		"login_otp_expiry": nil,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
