package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// TokenManager issues and parses the signed session tokens the browser
// client sends as bearer credentials.
type TokenManager struct {
	signingKey string
	ttl        time.Duration
}

func NewTokenManager(signingKey string, ttl time.Duration) (*TokenManager, error) {
	if signingKey == "" {
		return nil, errors.New("empty signing key")
	}

	return &TokenManager{signingKey: signingKey, ttl: ttl}, nil
}

func (m *TokenManager) Issue(userID, sessionID uuid.UUID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   userID.String(),
		Id:        sessionID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	})

	return token.SignedString([]byte(m.signingKey))
}

func (m *TokenManager) Parse(accessToken string) (userID, sessionID uuid.UUID, err error) {
	claims := jwt.StandardClaims{}
	_, err = jwt.ParseWithClaims(accessToken, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.signingKey), nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse subject: %w", err)
	}

	sessionID, err = uuid.Parse(claims.Id)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("parse session id: %w", err)
	}

	return userID, sessionID, nil
}
