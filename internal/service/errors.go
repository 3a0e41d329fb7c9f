package service

import "errors"

var (
	// ErrTireNotFound is returned when a tire lookup by ID matches no row.
	ErrTireNotFound = errors.New("tire not found")

	// ErrUserNotFound is returned when a login email matches no account.
	ErrUserNotFound = errors.New("user not found")
)
