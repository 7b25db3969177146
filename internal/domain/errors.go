package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
	// ErrUnavailable is returned by features whose optional backend is not configured.
	ErrUnavailable = errors.New("backend not configured")
)
