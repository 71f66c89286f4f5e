package errors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid user input")
	ErrUserNotFound = errors.New("user not found")
	ErrUserLocked   = errors.New("user account is locked")
	ErrInvalidToken = errors.New("bearer token is invalid")
)
