package services

import (
	"errors"
	"fmt"

	"github.com/Ken2664/llm-question-app/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// notFound maps a repository miss to ErrNotFound naming the missing thing.
func notFound(what string, err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
