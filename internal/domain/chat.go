package domain

import (
	"fmt"
	"time"
)

// Message roles accepted by the conversation store.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ValidRole reports whether role is one of user, assistant, system.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant || role == RoleSystem
}

// Session represents a numbered conversation thread owned by one user.
// Token is an opaque capability issued for anonymous sessions; it is never
// rendered in API responses.
type Session struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	SessionNumber  int       `json:"session_number"`
	Token          string    `json:"-"`
	LastActivityAt time.Time `json:"last_activity_at"`
	MessagesCount  int       `json:"messages_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayName returns the label used by the sessions list
func (s *Session) DisplayName() string {
	return fmt.Sprintf("Session #%d", s.SessionNumber)
}

// Message represents one turn within a session
type Message struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatTurn is the minimal role+content projection fed to the completion
// provider as history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QueryRequest is the request to send a chat message
type QueryRequest struct {
	SessionID int64  `json:"session_id,omitempty"`
	Message   string `json:"message"`
}
