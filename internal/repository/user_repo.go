package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// UserRepository handles user persistence
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindOrCreate resolves an identified user by normalized handle, creating
// the row on first claim. A concurrent identical claim loses the insert to
// the unique index and falls through to the re-fetch.
func (r *UserRepository) FindOrCreate(identifier string) (*domain.User, error) {
	normalized := domain.NormalizeIdentifier(identifier)
	if !domain.ValidIdentifier(normalized) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, identifier)
	}
	return r.findOrCreate(normalized, false)
}

// AnonymousUser returns the single canonical anonymous account, creating it
// on first use.
func (r *UserRepository) AnonymousUser() (*domain.User, error) {
	return r.findOrCreate(domain.AnonymousIdentifier, true)
}

func (r *UserRepository) findOrCreate(identifier string, anonymous bool) (*domain.User, error) {
	if user, err := r.FindByIdentifier(identifier); err != nil {
		return nil, err
	} else if user != nil {
		return user, nil
	}

	_, err := r.db.Exec(`
		INSERT INTO users (identifier, anonymous, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO NOTHING
	`, identifier, anonymous, time.Now())
	if err != nil && !isUniqueViolation(err) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err := r.FindByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("create user %q: %w", identifier, domain.ErrNotFound)
	}
	return user, nil
}

// FindByIdentifier retrieves a user by handle (case-insensitive). Returns
// nil when no such user exists.
func (r *UserRepository) FindByIdentifier(identifier string) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRow(`
		SELECT id, identifier, anonymous, created_at
		FROM users WHERE identifier = ?
	`, identifier).Scan(&user.ID, &user.Identifier, &user.Anonymous, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(id int64) (*domain.User, error) {
	user := &domain.User{}

	err := r.db.QueryRow(`
		SELECT id, identifier, anonymous, created_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Identifier, &user.Anonymous, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user; sessions and messages cascade.
func (r *UserRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	return err
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
