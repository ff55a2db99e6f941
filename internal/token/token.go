// Package token generates the short-lived random secrets used by the
// account lifecycle: email verification and password reset tokens, and
// numeric one-time codes for 2FA login and email change.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

// Lifetimes for each token purpose.
const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour
	OTPTTL               = 10 * time.Minute
)

// otpRange covers the 6-digit codes 100000..999999.
var otpRange = big.NewInt(900000)

// NewToken returns a 64-character hex token backed by 32 bytes of
// cryptographically strong randomness.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewOTP returns a uniformly random 6-digit numeric code as a string.
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", err
	}
	code := n.Int64() + 100000
	return formatOTP(code), nil
}

func formatOTP(code int64) string {
	digits := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		digits[i] = byte('0' + code%10)
		code /= 10
	}
	return string(digits)
}
