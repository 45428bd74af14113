package store

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrForbidden            = errors.New("operation not permitted")

	// ErrPartialWrite reports a notification row that was created before its
	// recipient rows could be written. The join table is authoritative, so
	// such a notification is visible to nobody and can be reaped.
	ErrPartialWrite = errors.New("notification created but recipients not recorded")
)
