package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the request conflicts with the current state of the item
	ErrConflict = errors.New("Your request conflicts with the current state")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrUnavailable will throw while the system refuses writes
	ErrUnavailable = errors.New("Service temporarily unavailable")

	ErrInvalidNumberFormat = errors.New("invalid number format")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotImplemented      = errors.New("not implemented")
)
