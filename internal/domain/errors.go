package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNoAPIKey            = errors.New("api key not configured")
	ErrLockHeld            = errors.New("lock already held")
)
