package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieClaims is what the session cookie carries: a pointer into the store,
// not the session itself. The backend token never reaches the browser.
type CookieClaims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	jwt.RegisteredClaims
}

func signCookie(secret, sessionID string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := CookieClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

func parseCookie(value, secret string) (*CookieClaims, error) {
	token, err := jwt.ParseWithClaims(value, &CookieClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*CookieClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid session cookie")
}
