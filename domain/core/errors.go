package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrViewNotFound   = fmt.Errorf("%w: view", ErrNotFound)
	ErrPrefNotFound   = fmt.Errorf("%w: preference", ErrNotFound)
	ErrElementMissing = fmt.Errorf("%w: element", ErrNotFound)

	// Registration errors
	ErrDuplicateView = errors.New("view already registered")
	ErrInvalidViewID = errors.New("invalid view id")

	// Data errors
	ErrEmptyData    = errors.New("no data points")
	ErrNoPrediction = errors.New("response carries no predicted price")

	// Navigation errors
	ErrStaleEpoch = errors.New("navigation epoch superseded")
)

// Error constructors with context
func NewDuplicateViewError(id string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateView, id)
}

func NewMissingElementError(id string) error {
	return fmt.Errorf("%w: #%s", ErrElementMissing, id)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
