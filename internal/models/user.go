package models

import "time"

// User represents a user account with its credential lifecycle state.
// Each ephemeral secret is a {value, expiry} pair: the pair is valid only
// while the value is set and the expiry is in the future, and it is cleared
// on use. The email field mutates only through the verified email-change
// flow (PendingEmail + EmailChangeOTP).
type User struct {
	Base
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`

	// Preferences
	Currency     string `gorm:"default:USD" json:"currency"`
	Locale       string `gorm:"default:en" json:"locale"`
	HideBalances bool   `gorm:"default:false" json:"hide_balances"`

	// Security state
	IsEmailVerified    bool `gorm:"default:false" json:"is_email_verified"`
	IsTwoFactorEnabled bool `gorm:"default:false" json:"is_two_factor_enabled"`

	// Email verification pair
	EmailVerificationToken  string     `json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`

	// Password reset pair
	PasswordResetToken  string     `json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`

	// 2FA login OTP pair
	LoginOTP       string     `json:"-"`
	LoginOTPExpiry *time.Time `json:"-"`

	// Email change staging: OTP pair plus the address being migrated to
	EmailChangeOTP       string     `json:"-"`
	EmailChangeOTPExpiry *time.Time `json:"-"`
	PendingEmail         string     `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Sessions     []Session     `gorm:"foreignKey:UserID" json:"sessions,omitempty"`
	Categories   []Category    `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
