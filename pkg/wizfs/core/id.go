package core

import (
	"github.com/google/uuid"
)

// NewID returns a unique identifier for history entries and sessions.
func NewID() string {
	return uuid.New().String()
}
