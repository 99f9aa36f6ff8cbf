package domain

import "errors"

var (
	// ErrOrderNotFound is returned when the referenced order does not exist
	// or has been soft-deleted on paths that exclude deleted orders.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAccessDenied is returned when the caller is not the order's owner.
	ErrAccessDenied = errors.New("access to order denied")
	// ErrInvalidStatus is returned for an unrecognized status code on create or update.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrEmptyOrder is returned when no products are supplied.
	ErrEmptyOrder = errors.New("order must contain at least one product")
	// ErrInvalidFilter is returned for an unrecognized status code in a list filter.
	ErrInvalidFilter = errors.New("invalid status filter")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrEmptyUsername is returned when the username is empty after trimming.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrWeakPassword is returned when the password is shorter than 8 characters.
	ErrWeakPassword = errors.New("password must be at least 8 characters long")
)
