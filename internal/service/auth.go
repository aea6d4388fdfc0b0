package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/config"
)

// AuthService issues and validates access tokens.
type AuthService struct {
	secret []byte
	maxAge int
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		maxAge: cfg.AccessTokenMaxAge,
	}
}

// GenerateAccessToken signs a short-lived HS256 token for the user.
func (s *AuthService) GenerateAccessToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(s.maxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ExpiresIn is the access token lifetime in seconds, reported to clients.
func (s *AuthService) ExpiresIn() int {
	return s.maxAge
}

// ParseAccessToken validates a token and returns the user id it carries.
func (s *AuthService) ParseAccessToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("token missing user_id claim")
	}
	return int64(userID), nil
}
