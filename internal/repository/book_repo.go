package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// BookRepository handles catalog persistence and the read queries backing
// the assistant's tool layer.
type BookRepository struct {
	db *DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *DB) *BookRepository {
	return &BookRepository{db: db}
}

const bookColumns = `id, isbn, title, author, publisher, description, price, genres, rating,
	review_count, page_count, language, published_at, availability_status,
	is_trending, trending_score, image_url, thumbnail_url, created_at`

// Create inserts a new book. Existing ISBNs are left untouched.
func (r *BookRepository) Create(book *domain.Book) error {
	genresJSON, _ := json.Marshal(book.Genres)
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}

	res, err := r.db.Exec(`
		INSERT INTO books (isbn, title, author, publisher, description, price, genres, rating,
			review_count, page_count, language, published_at, availability_status,
			is_trending, trending_score, image_url, thumbnail_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn) DO NOTHING
	`, book.ISBN, book.Title, book.Author, book.Publisher, book.Description, book.Price,
		string(genresJSON), book.Rating, book.ReviewCount, book.PageCount, book.Language,
		book.PublishedAt, book.AvailabilityStatus, book.IsTrending, book.TrendingScore,
		book.ImageURL, book.ThumbnailURL, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}

	// LastInsertId is stale when the conflict clause skipped the insert.
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		if id, err := res.LastInsertId(); err == nil {
			book.ID = id
		}
	}
	return nil
}

// FindByISBN retrieves a book by exact ISBN. Returns nil when absent.
func (r *BookRepository) FindByISBN(isbn string) (*domain.Book, error) {
	return r.queryOne(`SELECT `+bookColumns+` FROM books WHERE isbn = ?`, isbn)
}

// SearchByTitle performs a case-insensitive substring search over titles.
func (r *BookRepository) SearchByTitle(query string, limit int) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE LOWER(title) LIKE ?
		ORDER BY rating DESC LIMIT ?
	`, "%"+strings.ToLower(query)+"%", limit)
}

// SearchByAuthor performs a case-insensitive substring search over authors.
func (r *BookRepository) SearchByAuthor(query string, limit int) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE LOWER(author) LIKE ?
		ORDER BY rating DESC LIMIT ?
	`, "%"+strings.ToLower(query)+"%", limit)
}

// Trending returns trending-flagged books, best score first.
func (r *BookRepository) Trending(limit int) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE is_trending = 1
		ORDER BY trending_score DESC LIMIT ?
	`, limit)
}

// ByGenre substring-matches over the serialized genre list.
func (r *BookRepository) ByGenre(genre string, limit int) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE genres LIKE ?
		ORDER BY rating DESC LIMIT ?
	`, "%"+genre+"%", limit)
}

// HighlyRated returns books at or above minRating, best first.
func (r *BookRepository) HighlyRated(limit int, minRating float64) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE rating >= ?
		ORDER BY rating DESC LIMIT ?
	`, minRating, limit)
}

// Recent returns books published within the last monthsAgo months, newest
// first.
func (r *BookRepository) Recent(limit, monthsAgo int) ([]*domain.Book, error) {
	cutoff := time.Now().AddDate(0, -monthsAgo, 0)
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE published_at >= ?
		ORDER BY published_at DESC LIMIT ?
	`, cutoff, limit)
}

// FindSimilar returns precomputed similar books ranked by score. When no
// similarities exist it falls back to books sharing the first genre.
func (r *BookRepository) FindSimilar(book *domain.Book, limit int) ([]*domain.Book, error) {
	books, err := r.queryMany(`
		SELECT `+prefixedBookColumns("b")+` FROM book_similarities s
		JOIN books b ON b.id = s.similar_book_id
		WHERE s.book_id = ?
		ORDER BY s.similarity_score DESC LIMIT ?
	`, book.ID, limit)
	if err != nil {
		return nil, err
	}
	if len(books) > 0 {
		return books, nil
	}

	if len(book.Genres) == 0 {
		return []*domain.Book{}, nil
	}
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		WHERE id != ? AND genres LIKE ?
		ORDER BY rating DESC LIMIT ?
	`, book.ID, "%"+book.Genres[0]+"%", limit)
}

// SimilarCount returns the number of precomputed similarities for a book.
func (r *BookRepository) SimilarCount(bookID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM book_similarities WHERE book_id = ?`, bookID).Scan(&count)
	return count, err
}

// UpsertSimilarity stores a directed similarity score for a book pair.
func (r *BookRepository) UpsertSimilarity(bookID, similarBookID int64, score float64) error {
	_, err := r.db.Exec(`
		INSERT INTO book_similarities (book_id, similar_book_id, similarity_score, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(book_id, similar_book_id) DO UPDATE SET similarity_score = excluded.similarity_score
	`, bookID, similarBookID, score, time.Now())
	return err
}

// CreateReview adds a review and refreshes the book's derived rating and
// review count.
func (r *BookRepository) CreateReview(review *domain.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	res, err := r.db.Exec(`
		INSERT INTO reviews (book_id, rating, content, created_at)
		VALUES (?, ?, ?, ?)
	`, review.BookID, review.Rating, review.Content, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		review.ID = id
	}

	_, err = r.db.Exec(`
		UPDATE books SET
			rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE book_id = ?),
			review_count = (SELECT COUNT(*) FROM reviews WHERE book_id = ?)
		WHERE id = ?
	`, review.BookID, review.BookID, review.BookID)
	return err
}

// Reviews returns up to limit reviews for a book, newest first.
func (r *BookRepository) Reviews(bookID int64, limit int) ([]domain.Review, error) {
	rows, err := r.db.Query(`
		SELECT id, book_id, rating, content, created_at
		FROM reviews WHERE book_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, bookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(&review.ID, &review.BookID, &review.Rating, &review.Content, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// List returns a page of the catalog ordered by title, for the admin surface.
func (r *BookRepository) List(limit, offset int) ([]*domain.Book, error) {
	return r.queryMany(`
		SELECT `+bookColumns+` FROM books
		ORDER BY title ASC LIMIT ? OFFSET ?
	`, limit, offset)
}

func (r *BookRepository) queryOne(query string, args ...any) (*domain.Book, error) {
	book, err := scanBook(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (r *BookRepository) queryMany(query string, args ...any) ([]*domain.Book, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	book := &domain.Book{}
	var genresJSON, publisher, description, language, availability, imageURL, thumbnailURL sql.NullString
	var price sql.NullFloat64
	var pageCount sql.NullInt64
	var publishedAt sql.NullTime

	err := row.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author, &publisher, &description,
		&price, &genresJSON, &book.Rating, &book.ReviewCount, &pageCount, &language,
		&publishedAt, &availability, &book.IsTrending, &book.TrendingScore,
		&imageURL, &thumbnailURL, &book.CreatedAt)
	if err != nil {
		return nil, err
	}

	book.Publisher = publisher.String
	book.Description = description.String
	book.Price = price.Float64
	book.PageCount = int(pageCount.Int64)
	book.Language = language.String
	book.AvailabilityStatus = availability.String
	book.ImageURL = imageURL.String
	book.ThumbnailURL = thumbnailURL.String
	book.PublishedAt = publishedAt.Time
	if genresJSON.String != "" {
		json.Unmarshal([]byte(genresJSON.String), &book.Genres)
	}

	return book, nil
}

func prefixedBookColumns(alias string) string {
	cols := strings.Split(bookColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
