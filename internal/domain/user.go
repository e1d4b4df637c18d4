package domain

import (
	"regexp"
	"strings"
	"time"
)

// AnonymousIdentifier is the handle of the single canonical anonymous account.
const AnonymousIdentifier = "anonymous"

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// User represents an identified or anonymous chat user
type User struct {
	ID         int64     `json:"id"`
	Identifier string    `json:"identifier"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeIdentifier trims and lower-cases a submitted handle.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// ValidIdentifier reports whether a normalized handle is acceptable for
// a non-anonymous user (alphanumeric only, non-empty). The anonymous
// placeholder is reserved: claiming it would hand over every anonymous
// visitor's sessions.
func ValidIdentifier(identifier string) bool {
	return identifier != AnonymousIdentifier && identifierPattern.MatchString(identifier)
}

// IdentifyRequest is the request to claim a handle
type IdentifyRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}
