package service

import (
	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/repository"
)

// AdminService backs the read-only operational surface: telemetry and
// catalog browsing.
type AdminService struct {
	books   *repository.BookRepository
	queries *repository.QueryLogRepository
}

// NewAdminService creates a new admin service
func NewAdminService(books *repository.BookRepository, queries *repository.QueryLogRepository) *AdminService {
	return &AdminService{books: books, queries: queries}
}

// RecentQueries returns the latest assistant telemetry rows.
func (s *AdminService) RecentQueries(limit int) ([]*domain.QueryLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.queries.Recent(limit)
}

// ListBooks returns a page of the catalog.
func (s *AdminService) ListBooks(limit, offset int) ([]*domain.Book, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.books.List(limit, offset)
}

// GetBook returns full detail for one book.
func (s *AdminService) GetBook(isbn string) (*domain.BookDetail, error) {
	book, err := s.books.FindByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}

	similarCount, err := s.books.SimilarCount(book.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.books.Reviews(book.ID, 3)
	if err != nil {
		return nil, err
	}

	detail := book.Detail(similarCount, reviews)
	return &detail, nil
}

// SimilarBooks returns books similar to the given one.
func (s *AdminService) SimilarBooks(isbn string, limit int) ([]domain.BookSummary, error) {
	book, err := s.books.FindByISBN(isbn)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 5
	}

	similar, err := s.books.FindSimilar(book, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.BookSummary, 0, len(similar))
	for _, b := range similar {
		summaries = append(summaries, b.Summary())
	}
	return summaries, nil
}
