package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeDevice TokenType = "device"

	tokenIssuer   = "rental-desk"
	tokenAudience = "desk-api"
)

// DeviceClaims identifies an authenticated desk device
type DeviceClaims struct {
	DeviceID string    `json:"device_id"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateDeviceToken(deviceID string) (string, time.Time, error)
	ValidateToken(tokenString string) (*DeviceClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateDeviceToken(deviceID string) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := DeviceClaims{
		DeviceID: deviceID,
		Type:     TokenTypeDevice,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*DeviceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &DeviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithAudience(tokenAudience), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*DeviceClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeDevice {
		return nil, ErrWrongTokenType
	}
	if claims.DeviceID == "" {
		claims.DeviceID = claims.Subject
	}
	return claims, nil
}
