package service

import (
	"context"
	"strings"
	"time"

	"rental-desk-backend/internal/logger"
	"rental-desk-backend/internal/security"
)

type authService struct {
	tokens       security.TokenManager
	passcodeHash string
}

func NewAuthService(tokens security.TokenManager, passcodeHash string) AuthService {
	return &authService{
		tokens:       tokens,
		passcodeHash: passcodeHash,
	}
}

func (s *authService) AuthenticateDevice(ctx context.Context, deviceID, passcode string) (string, time.Time, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return "", time.Time{}, invalidInput("device_id is required")
	}
	if !security.VerifyPasscode(s.passcodeHash, passcode) {
		logger.Warn("Device authentication rejected", "device_id", deviceID)
		return "", time.Time{}, ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.GenerateDeviceToken(deviceID)
	if err != nil {
		return "", time.Time{}, err
	}
	logger.Info("Device authenticated", "device_id", deviceID, "expires_at", expiresAt)
	return token, expiresAt, nil
}
