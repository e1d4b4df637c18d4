package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/llm"
)

// stubProvider is a canned llm.Provider that records what it was asked.
type stubProvider struct {
	result *llm.Result
	err    error

	calls   int
	prompt  string
	history []domain.ChatTurn
}

func (p *stubProvider) Run(_ context.Context, systemPrompt string, _ []llm.ToolDescriptor, history []domain.ChatTurn) (*llm.Result, error) {
	p.calls++
	p.prompt = systemPrompt
	p.history = history
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type loggedQuery struct {
	query    string
	response string
	success  bool
}

// memQueryLog collects telemetry in memory.
type memQueryLog struct {
	entries []loggedQuery
}

func (l *memQueryLog) Log(query, response string, success bool, _ int) error {
	l.entries = append(l.entries, loggedQuery{query: query, response: response, success: success})
	return nil
}

// memUsers is an in-memory IdentityStore.
type memUsers struct {
	byIdentifier map[string]*domain.User
	nextID       int64
}

func newMemUsers() *memUsers {
	return &memUsers{byIdentifier: map[string]*domain.User{}}
}

func (m *memUsers) FindOrCreate(identifier string) (*domain.User, error) {
	normalized := domain.NormalizeIdentifier(identifier)
	if !domain.ValidIdentifier(normalized) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, identifier)
	}
	return m.findOrCreate(normalized, false), nil
}

func (m *memUsers) AnonymousUser() (*domain.User, error) {
	return m.findOrCreate(domain.AnonymousIdentifier, true), nil
}

func (m *memUsers) findOrCreate(identifier string, anonymous bool) *domain.User {
	if user, ok := m.byIdentifier[identifier]; ok {
		return user
	}
	m.nextID++
	user := &domain.User{ID: m.nextID, Identifier: identifier, Anonymous: anonymous, CreatedAt: time.Now()}
	m.byIdentifier[identifier] = user
	return user
}

// memStore is an in-memory ConversationStore.
type memStore struct {
	sessions    map[int64]*domain.Session
	messages    map[int64][]*domain.Message
	nextSession int64
	nextMessage int64
}

func newMemStore() *memStore {
	return &memStore{
		sessions: map[int64]*domain.Session{},
		messages: map[int64][]*domain.Message{},
	}
}

func (m *memStore) CreateSession(userID int64, token string) (*domain.Session, error) {
	number := 1
	for _, s := range m.sessions {
		if s.UserID == userID && s.SessionNumber >= number {
			number = s.SessionNumber + 1
		}
	}

	m.nextSession++
	session := &domain.Session{
		ID:             m.nextSession,
		UserID:         userID,
		SessionNumber:  number,
		Token:          token,
		LastActivityAt: time.Now(),
		CreatedAt:      time.Now(),
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memStore) GetSession(userID, id int64) (*domain.Session, error) {
	session, ok := m.sessions[id]
	if !ok || session.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (m *memStore) GetSessionByToken(token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	for _, s := range m.sessions {
		if s.Token == token {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) ListSessions(userID int64) ([]*domain.Session, error) {
	var out []*domain.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastActivityAt.Equal(out[j].LastActivityAt) {
			return out[i].LastActivityAt.After(out[j].LastActivityAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) MostRecentSession(userID int64) (*domain.Session, error) {
	sessions, _ := m.ListSessions(userID)
	if len(sessions) == 0 {
		return nil, domain.ErrNotFound
	}
	return sessions[0], nil
}

func (m *memStore) AppendMessage(sessionID int64, role, content string) (*domain.Message, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrInvalidRequest, role)
	}

	m.nextMessage++
	message := &domain.Message{
		ID:        m.nextMessage,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Position:  len(m.messages[sessionID]) + 1,
		CreatedAt: time.Now(),
	}
	m.messages[sessionID] = append(m.messages[sessionID], message)
	session.MessagesCount++
	session.LastActivityAt = message.CreatedAt
	return message, nil
}

func (m *memStore) GetMessages(sessionID int64) ([]*domain.Message, error) {
	return m.messages[sessionID], nil
}

func (m *memStore) FormatForCompletion(sessionID int64) ([]domain.ChatTurn, error) {
	turns := make([]domain.ChatTurn, 0, len(m.messages[sessionID]))
	for _, msg := range m.messages[sessionID] {
		turns = append(turns, domain.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return turns, nil
}
