// Package common defines shared sentinel errors used across the console
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrNotFound is returned when a roster record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStatus is returned for an attendance status outside the
	// known set.
	ErrInvalidStatus = errors.New("invalid status")
)
