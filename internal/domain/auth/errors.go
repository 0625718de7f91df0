package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidManagerLink = errors.New("invalid or expired manager link")
	ErrInvalidManagerCode = errors.New("manager code is required")
)
