package models

import "errors"

var (
	// ErrInvalidArgument is returned for out-of-range parameters and mismatched inputs
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a requested zone, landmark, arena or task does not exist
	ErrNotFound = errors.New("not found")
)
