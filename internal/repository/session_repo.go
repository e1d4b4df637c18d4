package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// SessionRepository handles chat session and message persistence. It is the
// only component that mutates conversation state.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession allocates the next session number for the user and creates
// an empty session. The number is assigned inside the INSERT so concurrent
// creations for the same user cannot collide.
func (r *SessionRepository) CreateSession(userID int64, token string) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		UserID:         userID,
		Token:          token,
		LastActivityAt: now,
		CreatedAt:      now,
	}

	err := r.db.QueryRow(`
		INSERT INTO chat_sessions (user_id, session_number, token, last_activity_at, messages_count, created_at)
		VALUES (?, (SELECT COALESCE(MAX(session_number), 0) + 1 FROM chat_sessions WHERE user_id = ?), ?, ?, 0, ?)
		RETURNING id, session_number
	`, userID, userID, nullableString(token), now, now).Scan(&session.ID, &session.SessionNumber)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by ID, enforcing ownership. A session
// belonging to another user is reported as not found.
func (r *SessionRepository) GetSession(userID, id int64) (*domain.Session, error) {
	return r.scanSession(r.db.QueryRow(`
		SELECT id, user_id, session_number, token, last_activity_at, messages_count, created_at
		FROM chat_sessions WHERE id = ? AND user_id = ?
	`, id, userID))
}

// GetSessionByToken resolves an anonymous session by its capability token.
func (r *SessionRepository) GetSessionByToken(token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	return r.scanSession(r.db.QueryRow(`
		SELECT id, user_id, session_number, token, last_activity_at, messages_count, created_at
		FROM chat_sessions WHERE token = ?
	`, token))
}

// ListSessions returns the user's sessions, most recently active first.
func (r *SessionRepository) ListSessions(userID int64) ([]*domain.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, session_number, token, last_activity_at, messages_count, created_at
		FROM chat_sessions WHERE user_id = ?
		ORDER BY last_activity_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session := &domain.Session{}
		var token sql.NullString
		if err := rows.Scan(&session.ID, &session.UserID, &session.SessionNumber, &token,
			&session.LastActivityAt, &session.MessagesCount, &session.CreatedAt); err != nil {
			return nil, err
		}
		session.Token = token.String
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// MostRecentSession returns the user's most recently active session, or
// ErrNotFound when the user has none.
func (r *SessionRepository) MostRecentSession(userID int64) (*domain.Session, error) {
	return r.scanSession(r.db.QueryRow(`
		SELECT id, user_id, session_number, token, last_activity_at, messages_count, created_at
		FROM chat_sessions WHERE user_id = ?
		ORDER BY last_activity_at DESC, id DESC
		LIMIT 1
	`, userID))
}

// AppendMessage adds a turn to a session. Position allocation, the message
// insert, and the session activity/count bump happen in one transaction so
// concurrent appends never collide on position or lose a count.
func (r *SessionRepository) AppendMessage(sessionID int64, role, content string) (*domain.Message, error) {
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrInvalidRequest, role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content required", domain.ErrInvalidRequest)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now()
	message := &domain.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}

	err = tx.QueryRow(`
		INSERT INTO chat_messages (chat_session_id, role, content, position, created_at)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM chat_messages WHERE chat_session_id = ?), ?)
		RETURNING id, position
	`, sessionID, role, content, sessionID, now).Scan(&message.ID, &message.Position)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE chat_sessions
		SET last_activity_at = ?, messages_count = messages_count + 1
		WHERE id = ?
	`, now, sessionID)
	if err != nil {
		return nil, fmt.Errorf("update session activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return message, nil
}

// GetMessages returns a session's messages in position order.
func (r *SessionRepository) GetMessages(sessionID int64) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, chat_session_id, role, content, position, created_at
		FROM chat_messages WHERE chat_session_id = ?
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role,
			&message.Content, &message.Position, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// FormatForCompletion projects a session's messages to the role+content
// pairs fed to the completion provider.
func (r *SessionRepository) FormatForCompletion(sessionID int64) ([]domain.ChatTurn, error) {
	messages, err := r.GetMessages(sessionID)
	if err != nil {
		return nil, err
	}

	turns := make([]domain.ChatTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, domain.ChatTurn{Role: m.Role, Content: m.Content})
	}
	return turns, nil
}

func (r *SessionRepository) scanSession(row *sql.Row) (*domain.Session, error) {
	session := &domain.Session{}
	var token sql.NullString

	err := row.Scan(&session.ID, &session.UserID, &session.SessionNumber, &token,
		&session.LastActivityAt, &session.MessagesCount, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	session.Token = token.String
	return session, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
