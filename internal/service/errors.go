package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAlreadySubmitted   = errors.New("feedback already submitted for this task")
	ErrInsightsNotFound   = errors.New("no insights for department")
	ErrForbidden          = errors.New("forbidden")
)
