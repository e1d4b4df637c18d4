package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/repository"
)

func newTestCatalog(t *testing.T) (*CatalogService, *repository.BookRepository) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	books := repository.NewBookRepository(db)
	return NewCatalogService(books), books
}

func seedBook(t *testing.T, books *repository.BookRepository, book *domain.Book) *domain.Book {
	t.Helper()
	if book.PublishedAt.IsZero() {
		book.PublishedAt = time.Now().AddDate(-1, 0, 0)
	}
	require.NoError(t, books.Create(book))
	return book
}

type listEnvelopePayload struct {
	Success bool                 `json:"success"`
	Books   []domain.BookSummary `json:"books"`
	Error   string               `json:"error"`
}

func executeList(t *testing.T, catalog *CatalogService, tool, args string) listEnvelopePayload {
	t.Helper()
	raw, err := catalog.Execute(context.Background(), tool, args)
	require.NoError(t, err)

	var payload listEnvelopePayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExecuteSearchBooksByTitle(t *testing.T) {
	catalog, books := newTestCatalog(t)
	seedBook(t, books, &domain.Book{ISBN: "978-1", Title: "The Hobbit", Author: "Tolkien", Rating: 4.7})
	seedBook(t, books, &domain.Book{ISBN: "978-2", Title: "Unrelated", Author: "Other"})

	payload := executeList(t, catalog, "search_books", `{"query":"hobbit"}`)
	assert.True(t, payload.Success)
	require.Len(t, payload.Books, 1)
	assert.Equal(t, "The Hobbit", payload.Books[0].Title)
}

func TestExecuteSearchBooksByISBN(t *testing.T) {
	catalog, books := newTestCatalog(t)
	seedBook(t, books, &domain.Book{ISBN: "978-1", Title: "Exact", Author: "A"})

	payload := executeList(t, catalog, "search_books", `{"query":"978-1","search_type":"isbn"}`)
	assert.True(t, payload.Success)
	require.Len(t, payload.Books, 1)

	missing := executeList(t, catalog, "search_books", `{"query":"978-x","search_type":"isbn"}`)
	assert.True(t, missing.Success)
	assert.Empty(t, missing.Books)
}

func TestExecuteGetBookDetails(t *testing.T) {
	catalog, books := newTestCatalog(t)
	book := seedBook(t, books, &domain.Book{ISBN: "978-1", Title: "Detailed", Author: "A", Publisher: "Norton"})
	require.NoError(t, books.CreateReview(&domain.Review{BookID: book.ID, Rating: 5, Content: "superb"}))

	raw, err := catalog.Execute(context.Background(), "get_book_details", `{"isbn":"978-1"}`)
	require.NoError(t, err)

	var payload struct {
		Success bool              `json:"success"`
		Book    domain.BookDetail `json:"book"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, "Detailed", payload.Book.Title)
	assert.Equal(t, "Norton", payload.Book.Publisher)
	require.Len(t, payload.Book.Reviews, 1)
	assert.Equal(t, "superb", payload.Book.Reviews[0].Content)
}

func TestExecuteGetBookDetailsUnknownISBN(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	raw, err := catalog.Execute(context.Background(), "get_book_details", `{"isbn":"978-x"}`)
	require.NoError(t, err)

	var payload struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	assert.False(t, payload.Success)
	assert.Equal(t, "Book not found", payload.Error)
}

func TestExecuteTrendingAndGenre(t *testing.T) {
	catalog, books := newTestCatalog(t)
	seedBook(t, books, &domain.Book{ISBN: "978-1", Title: "Hot", Author: "A", IsTrending: true, TrendingScore: 80, Genres: []string{"Fantasy"}})
	seedBook(t, books, &domain.Book{ISBN: "978-2", Title: "Cold", Author: "B", Genres: []string{"Crime"}})

	trending := executeList(t, catalog, "get_trending_books", `{}`)
	require.Len(t, trending.Books, 1)
	assert.Equal(t, "Hot", trending.Books[0].Title)

	byGenre := executeList(t, catalog, "get_books_by_genre", `{"genre":"Crime"}`)
	require.Len(t, byGenre.Books, 1)
	assert.Equal(t, "Cold", byGenre.Books[0].Title)
}

func TestExecuteGetSimilarBooksLimits(t *testing.T) {
	catalog, books := newTestCatalog(t)
	base := seedBook(t, books, &domain.Book{ISBN: "978-0", Title: "Base", Author: "A", Genres: []string{"Fantasy"}})
	for i := 1; i <= 6; i++ {
		other := seedBook(t, books, &domain.Book{
			ISBN:   fmt.Sprintf("978-%d", i),
			Title:  fmt.Sprintf("Similar %d", i),
			Author: "B",
			Genres: []string{"Fantasy"},
		})
		require.NoError(t, books.UpsertSimilarity(base.ID, other.ID, float64(i)/10))
	}

	// Default when the model omits limit.
	payload := executeList(t, catalog, "get_similar_books", `{"isbn":"978-0"}`)
	assert.Len(t, payload.Books, 5)

	// An explicit limit of 10 is honored, not collapsed to the default.
	payload = executeList(t, catalog, "get_similar_books", `{"isbn":"978-0","limit":10}`)
	assert.Len(t, payload.Books, 6)

	payload = executeList(t, catalog, "get_similar_books", `{"isbn":"978-0","limit":2}`)
	assert.Len(t, payload.Books, 2)
}

func TestExecuteUnknownToolFails(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	_, err := catalog.Execute(context.Background(), "drop_tables", `{}`)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecuteRejectsBadArguments(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	_, err := catalog.Execute(context.Background(), "search_books", `{not json`)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDefinitionsCoverAllCatalogTools(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	defs := catalog.Definitions()
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
		var schema map[string]any
		require.NoError(t, json.Unmarshal(d.Parameters, &schema), d.Name)
	}
	assert.Equal(t, []string{
		"search_books", "get_book_details", "get_similar_books",
		"get_trending_books", "get_books_by_genre",
		"get_highly_rated_books", "get_recent_books",
	}, names)
}
