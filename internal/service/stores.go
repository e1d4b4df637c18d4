package service

import "github.com/bookworm-ai/bookworm/internal/domain"

// ConversationStore is the durable conversation state surface the services
// depend on. repository.SessionRepository is the production implementation;
// tests use an in-memory one.
type ConversationStore interface {
	CreateSession(userID int64, token string) (*domain.Session, error)
	GetSession(userID, id int64) (*domain.Session, error)
	GetSessionByToken(token string) (*domain.Session, error)
	ListSessions(userID int64) ([]*domain.Session, error)
	MostRecentSession(userID int64) (*domain.Session, error)
	AppendMessage(sessionID int64, role, content string) (*domain.Message, error)
	GetMessages(sessionID int64) ([]*domain.Message, error)
	FormatForCompletion(sessionID int64) ([]domain.ChatTurn, error)
}

// IdentityStore resolves and creates users.
type IdentityStore interface {
	FindOrCreate(identifier string) (*domain.User, error)
	AnonymousUser() (*domain.User, error)
}

// QueryLogger records assistant telemetry.
type QueryLogger interface {
	Log(query, response string, success bool, responseTimeMs int) error
}
