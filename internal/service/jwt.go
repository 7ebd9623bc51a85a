package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

const accessTokenTTL = 24 * time.Hour

// InitJWT sets the signing secret for access tokens.
func InitJWT(secret string) {
	if secret == "" {
		panic("jwt secret is empty")
	}
	jwtSecret = []byte(secret)
}

// GenerateJWT issues an access token for a user.
func GenerateJWT(userID int64) (string, error) {
	now := time.Now().Unix()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(accessTokenTTL).Unix(),
		"iat":     now,
		"nbf":     now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseJWT validates an access token and returns the user id.
func ParseJWT(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})

	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if exp, ok := claims["exp"].(float64); ok && int64(exp) < now {
		return 0, errors.New("token expired")
	}
	if nbf, ok := claims["nbf"].(float64); ok && int64(nbf) > now {
		return 0, errors.New("token not valid yet")
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("user_id not found")
	}

	return int64(userID), nil
}
