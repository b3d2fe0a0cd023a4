package domain

import "errors"

var (
	// ErrNotFound marks a mutation whose target is missing from a local store.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected by a caller-side check.
	ErrValidation = errors.New("validation failed")
	// ErrRemoteUnavailable covers transport failures and non-2xx upstream answers.
	ErrRemoteUnavailable = errors.New("remote api unavailable")
	// ErrStoreCorrupted marks a persisted value that could not be parsed.
	ErrStoreCorrupted = errors.New("store corrupted")

	ErrBadCreds  = errors.New("invalid email or password")
	ErrEmptyCart = errors.New("cart empty")
)
