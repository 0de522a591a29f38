package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	ViewID    ID
)

func (id SessionID) String() string { return ID(id).String() }
func (id ViewID) String() string    { return ID(id).String() }

// NewSessionID creates an identifier for a browser session
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// ParseSessionID validates a session cookie value
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("malformed session ID %q: %w", s, err)
	}
	return SessionID(s), nil
}

var viewIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ParseViewID validates a view key, which doubles as the URL fragment token
func ParseViewID(s string) (ViewID, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if !viewIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidViewID, s)
	}
	return ViewID(s), nil
}
