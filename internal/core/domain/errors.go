package domain

import "errors"

var (
	ErrDuplicateEmail             = errors.New("email already registered")
	ErrDuplicateApplicationNumber = errors.New("application number already in use")
	ErrNotificationFailed         = errors.New("notification failed")
)
