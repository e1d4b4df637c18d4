package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// Caller carries the identity material a request presents: a claimed handle
// for identified users, or an opaque session token for anonymous browsing.
type Caller struct {
	Identifier     string
	AnonymousToken string
}

// Identified reports whether the caller has claimed a handle.
func (c Caller) Identified() bool {
	return c.Identifier != ""
}

// Resolution is the outcome of mapping a request to exactly one session.
// Token is set when an anonymous capability token must be (re-)issued to
// the caller.
type Resolution struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

// SessionService maps inbound requests to sessions and handles
// identification.
type SessionService struct {
	users  IdentityStore
	store  ConversationStore
	logger *zap.Logger
}

// NewSessionService creates a new session service
func NewSessionService(users IdentityStore, store ConversationStore, logger *zap.Logger) *SessionService {
	return &SessionService{users: users, store: store, logger: logger}
}

// Resolve picks the session a request applies to. Identified callers get
// their explicitly requested session (ownership enforced), their most recent
// one, or a fresh one. Anonymous callers are bound to the canonical
// anonymous account via their capability token; a stale token yields a new
// session and a re-issued token.
func (s *SessionService) Resolve(caller Caller, explicitID int64) (*Resolution, error) {
	if caller.Identified() {
		return s.resolveIdentified(caller.Identifier, explicitID)
	}
	return s.resolveAnonymous(caller.AnonymousToken)
}

func (s *SessionService) resolveIdentified(identifier string, explicitID int64) (*Resolution, error) {
	user, err := s.users.FindOrCreate(identifier)
	if err != nil {
		return nil, err
	}

	if explicitID > 0 {
		session, err := s.store.GetSession(user.ID, explicitID)
		if err != nil {
			return nil, err
		}
		return &Resolution{User: user, Session: session}, nil
	}

	session, err := s.store.MostRecentSession(user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		session, err = s.store.CreateSession(user.ID, "")
	}
	if err != nil {
		return nil, err
	}
	return &Resolution{User: user, Session: session}, nil
}

func (s *SessionService) resolveAnonymous(token string) (*Resolution, error) {
	user, err := s.users.AnonymousUser()
	if err != nil {
		return nil, err
	}

	if token != "" {
		session, err := s.store.GetSessionByToken(token)
		if err == nil {
			return &Resolution{User: user, Session: session, Token: session.Token}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		s.logger.Debug("anonymous session token no longer resolves, issuing a new one")
	}

	session, err := s.store.CreateSession(user.ID, uuid.New().String())
	if err != nil {
		return nil, err
	}
	return &Resolution{User: user, Session: session, Token: session.Token}, nil
}

// NewSession starts a fresh chat thread for the caller ("new chat").
func (s *SessionService) NewSession(caller Caller) (*Resolution, error) {
	if caller.Identified() {
		user, err := s.users.FindOrCreate(caller.Identifier)
		if err != nil {
			return nil, err
		}
		session, err := s.store.CreateSession(user.ID, "")
		if err != nil {
			return nil, err
		}
		return &Resolution{User: user, Session: session}, nil
	}

	user, err := s.users.AnonymousUser()
	if err != nil {
		return nil, err
	}
	session, err := s.store.CreateSession(user.ID, uuid.New().String())
	if err != nil {
		return nil, err
	}
	return &Resolution{User: user, Session: session, Token: session.Token}, nil
}

// Identify claims a handle for the caller. The handle is normalized and
// must be alphanumeric; a rejected handle leaves identity unchanged.
func (s *SessionService) Identify(identifier string) (*domain.User, error) {
	normalized := domain.NormalizeIdentifier(identifier)
	if !domain.ValidIdentifier(normalized) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, identifier)
	}
	return s.users.FindOrCreate(normalized)
}

// ListSessions returns the caller's sessions, most recently active first.
func (s *SessionService) ListSessions(caller Caller) ([]*domain.Session, error) {
	if !caller.Identified() {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.users.FindOrCreate(caller.Identifier)
	if err != nil {
		return nil, err
	}
	return s.store.ListSessions(user.ID)
}

// SessionMessages returns a session's messages, enforcing ownership. All
// anonymous sessions share the canonical anonymous owner, so anonymous
// callers may only reach the one session their token resolves to.
func (s *SessionService) SessionMessages(caller Caller, sessionID int64) ([]*domain.Message, error) {
	if caller.Identified() {
		user, err := s.users.FindOrCreate(caller.Identifier)
		if err != nil {
			return nil, err
		}
		session, err := s.store.GetSession(user.ID, sessionID)
		if err != nil {
			return nil, err
		}
		return s.store.GetMessages(session.ID)
	}

	session, err := s.store.GetSessionByToken(caller.AnonymousToken)
	if err != nil {
		return nil, err
	}
	if session.ID != sessionID {
		return nil, domain.ErrNotFound
	}
	return s.store.GetMessages(session.ID)
}
