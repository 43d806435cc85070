// internal/common/utils/jwt.go
// JWT token generation and validation. Tokens are issued by the account
// service; this side only needs to verify them and read the role.

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultTokenTTL applies when a caller mints a token without an expiry
const DefaultTokenTTL = time.Hour

// JWTClaims is what handlers learn about the caller
type JWTClaims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Type      string `json:"type"` // "access" or "refresh"
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat"`
	Issuer    string `json:"iss"`
}

// IsAdmin reports whether the token carries the admin role
func (c *JWTClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// GenerateJWT creates a new signed access token
func GenerateJWT(claims *JWTClaims, secret string) (string, error) {
	if claims.IssuedAt == 0 {
		claims.IssuedAt = time.Now().Unix()
	}
	if claims.ExpiresAt == 0 {
		claims.ExpiresAt = claims.IssuedAt + int64(DefaultTokenTTL/time.Second)
	}
	if claims.Type == "" {
		claims.Type = "access"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  strconv.FormatInt(claims.UserID, 10),
		"username": claims.Username,
		"role":     claims.Role,
		"type":     claims.Type,
		"exp":      claims.ExpiresAt,
		"iat":      claims.IssuedAt,
		"iss":      claims.Issuer,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns claims
func ValidateJWT(tokenString string, secret string) (*JWTClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid user_id in token")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return nil, errors.New("invalid user_id format")
	}

	return &JWTClaims{
		UserID:    userID,
		Username:  getStringClaim(claims, "username"),
		Role:      getStringClaim(claims, "role"),
		Type:      getStringClaim(claims, "type"),
		ExpiresAt: getInt64Claim(claims, "exp"),
		IssuedAt:  getInt64Claim(claims, "iat"),
		Issuer:    getStringClaim(claims, "iss"),
	}, nil
}

// Helper functions to safely extract claims
func getStringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}

func getInt64Claim(claims jwt.MapClaims, key string) int64 {
	if val, ok := claims[key].(float64); ok {
		return int64(val)
	}
	return 0
}
