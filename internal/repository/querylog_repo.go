package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// QueryLogRepository handles assistant telemetry persistence
type QueryLogRepository struct {
	db *DB
}

// NewQueryLogRepository creates a new query log repository
func NewQueryLogRepository(db *DB) *QueryLogRepository {
	return &QueryLogRepository{db: db}
}

// Log records one assistant invocation. On failure the response text doubles
// as the error detail, matching how the admin surface renders failures.
func (r *QueryLogRepository) Log(query, response string, success bool, responseTimeMs int) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query text required", domain.ErrInvalidRequest)
	}

	errorMessage := any(nil)
	if !success {
		errorMessage = response
	}

	_, err := r.db.Exec(`
		INSERT INTO book_queries (query_text, response_text, success, error_message, response_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, query, response, success, errorMessage, responseTimeMs, time.Now())
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

// Recent returns the latest log rows, newest first.
func (r *QueryLogRepository) Recent(limit int) ([]*domain.QueryLog, error) {
	rows, err := r.db.Query(`
		SELECT id, query_text, COALESCE(response_text, ''), success, COALESCE(error_message, ''), COALESCE(response_time_ms, 0), created_at
		FROM book_queries
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.QueryLog
	for rows.Next() {
		entry := &domain.QueryLog{}
		if err := rows.Scan(&entry.ID, &entry.QueryText, &entry.ResponseText, &entry.Success,
			&entry.ErrorMessage, &entry.ResponseTimeMs, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
