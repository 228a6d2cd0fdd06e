package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultSessionTTL = 168 * time.Hour

var (
	jwtSecret  string
	sessionTTL = defaultSessionTTL
)

func InitJWTSecret() error {
	jwtSecret = os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if hours := os.Getenv("SESSION_TTL_HOURS"); hours != "" {
		n, err := strconv.Atoi(hours)
		if err != nil || n <= 0 {
			return fmt.Errorf("SESSION_TTL_HOURS must be a positive integer, got %q", hours)
		}
		sessionTTL = time.Duration(n) * time.Hour
	}

	return nil
}

// SessionClaims is the token payload issued at login and checked on every
// authenticated request.
type SessionClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func GenerateJWT(userID uint, email string) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// VerifyJWT validates the signature and expiry and returns the session claims.
func VerifyJWT(tokenString string) (*SessionClaims, error) {
	var claims SessionClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("Invalid or expired token")
	}

	if claims.UserID == 0 {
		return nil, errors.New("Token carries no user")
	}

	return &claims, nil
}
