package errors

import "errors"

var (
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownFlow is returned when a flow id has no registered definition.
	ErrUnknownFlow = errors.New("unknown flow")
)
