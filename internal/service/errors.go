package service

import (
	"errors"
	"fmt"

	"rental-desk-backend/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSessionClosed     = errors.New("session is closed")
	ErrIncompleteReturn  = errors.New("return is incomplete")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// translate maps store errors onto service sentinels.
func translate(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
