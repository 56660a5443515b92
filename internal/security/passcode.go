package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPasscode generates a bcrypt hash of the desk passcode.
func HashPasscode(passcode string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hashed), nil
}

// VerifyPasscode compares a plaintext passcode with the stored bcrypt hash.
func VerifyPasscode(hash, passcode string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)) == nil
}
