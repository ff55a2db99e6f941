package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"monetra/internal/config"
	"monetra/internal/models"
)

const authCookieName = "monetra_token"

// getJWTKey returns the JWT key from configuration
func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a signed bearer token for a user. The token is
// stateless: there is no server-side revocation list, logout only clears the
// client cookie.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(config.Get().JWTExpirationDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "monetra-api",
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// ParseToken parses and validates a bearer token, returning its claims.
func ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTKey(), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// SetAuthCookie stores the bearer token in an HTTP-only cookie alongside the
// JSON response, for browser clients.
func SetAuthCookie(c *gin.Context, token string) {
	secure := config.Get().Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, int(config.Get().JWTExpirationDur.Seconds()), "/", "", secure, true)
}

// ClearAuthCookie removes the auth cookie. A token issued elsewhere remains
// valid until its embedded expiry.
func ClearAuthCookie(c *gin.Context) {
	secure := config.Get().Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, "", -1, "/", "", secure, true)
}

// AuthMiddleware verifies the bearer token (Authorization header, falling
// back to the auth cookie) and sets the user identity in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(c, "Invalid authorization header format")
				return
			}
			tokenString = parts[1]
		} else if cookie, err := c.Cookie(authCookieName); err == nil {
			tokenString = cookie
		}

		if tokenString == "" {
			unauthorized(c, "Authentication required")
			return
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"errors": []gin.H{
			{"code": "UNAUTHORIZED", "message": message},
		},
	})
	c.Abort()
}
