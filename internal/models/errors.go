package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrBackendUnavailable marks a primary backend failure absorbed by the fallback path
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrNotFound           = errors.New("not found")
	ErrEditNotPending     = errors.New("edit not found or already processed")
)

// ValidationError reports a missing or malformed input
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FetchError reports that a page could not be retrieved
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("could not fetch URL %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("could not fetch URL %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// PushError reports a failed platform push
type PushError struct {
	Provider Platform
	Reason   string
	Err      error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push to %s failed: %s", e.Provider, e.Reason)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed storage operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
