// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"dungeon-master/internal/pkg/lock"
	"dungeon-master/internal/store"
)

// Service errors. Handlers map these to HTTP status codes.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrStorageFailure      = errors.New("storage failure")
	ErrNarratorUnavailable = errors.New("narrator unavailable")
)

// invalidf builds an ErrInvalidInput with a message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storageErr classifies an error coming back from a store.
// Missing records become ErrNotFound; errors that are already classified pass
// through; everything else is a storage failure joined with its cause.
func storageErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case isClassified(err):
		return err
	default:
		return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
	}
}

func isClassified(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrStorageFailure) ||
		errors.Is(err, ErrNarratorUnavailable) ||
		errors.Is(err, lock.ErrLockTimeout) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
