package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/llm"
	"github.com/bookworm-ai/bookworm/internal/repository"
)

const (
	searchResultLimit  = 10
	similarResultLimit = 5
)

// CatalogService exposes the read-only book catalog to the assistant as a
// closed set of named tool operations.
type CatalogService struct {
	books *repository.BookRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(books *repository.BookRepository) *CatalogService {
	return &CatalogService{books: books}
}

// Definitions returns the static tool table offered to the completion
// provider.
func (s *CatalogService) Definitions() []llm.ToolDescriptor {
	return []llm.ToolDescriptor{
		{
			Name:        "search_books",
			Description: "Search for books by title, author, or ISBN",
			Parameters: schema(map[string]any{
				"query":       prop("string", "The search query"),
				"search_type": propEnum("string", "Type of search", "title", "author", "isbn"),
			}, "query"),
		},
		{
			Name:        "get_book_details",
			Description: "Get detailed information about a specific book",
			Parameters: schema(map[string]any{
				"isbn": prop("string", "The ISBN of the book"),
			}, "isbn"),
		},
		{
			Name:        "get_similar_books",
			Description: "Find books similar to a given book",
			Parameters: schema(map[string]any{
				"isbn":  prop("string", "The ISBN of the book"),
				"limit": prop("integer", "Maximum number of similar books to return"),
			}, "isbn"),
		},
		{
			Name:        "get_trending_books",
			Description: "Get currently trending or popular books",
			Parameters: schema(map[string]any{
				"limit": prop("integer", "Maximum number of books to return"),
			}),
		},
		{
			Name:        "get_books_by_genre",
			Description: "Get books by specific genre",
			Parameters: schema(map[string]any{
				"genre": prop("string", "The genre to search for"),
				"limit": prop("integer", "Maximum number of books to return"),
			}, "genre"),
		},
		{
			Name:        "get_highly_rated_books",
			Description: "Get books with high ratings (4.0 or above)",
			Parameters: schema(map[string]any{
				"limit":      prop("integer", "Maximum number of books to return"),
				"min_rating": prop("number", "Minimum rating threshold"),
			}),
		},
		{
			Name:        "get_recent_books",
			Description: "Get recently published books",
			Parameters: schema(map[string]any{
				"limit":      prop("integer", "Maximum number of books to return"),
				"months_ago": prop("integer", "How many months back to search"),
			}),
		},
	}
}

type toolArgs struct {
	Query      string  `json:"query"`
	SearchType string  `json:"search_type"`
	ISBN       string  `json:"isbn"`
	Genre      string  `json:"genre"`
	Limit      int     `json:"limit"`
	MinRating  float64 `json:"min_rating"`
	MonthsAgo  int     `json:"months_ago"`
}

// Execute dispatches one tool call and returns the JSON-encoded envelope.
func (s *CatalogService) Execute(ctx context.Context, name, argumentsJSON string) (string, error) {
	var args toolArgs
	if argumentsJSON != "" {
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return "", fmt.Errorf("%w: bad tool arguments: %v", domain.ErrInvalidRequest, err)
		}
	}
	switch name {
	case "search_books":
		return s.searchBooks(args)
	case "get_book_details":
		return s.getBookDetails(args)
	case "get_similar_books":
		return s.getSimilarBooks(args)
	case "get_trending_books":
		return s.listEnvelope(s.books.Trending(limitOrDefault(args.Limit, searchResultLimit)))
	case "get_books_by_genre":
		return s.listEnvelope(s.books.ByGenre(args.Genre, limitOrDefault(args.Limit, searchResultLimit)))
	case "get_highly_rated_books":
		if args.MinRating <= 0 {
			args.MinRating = 4.0
		}
		return s.listEnvelope(s.books.HighlyRated(limitOrDefault(args.Limit, searchResultLimit), args.MinRating))
	case "get_recent_books":
		if args.MonthsAgo <= 0 {
			args.MonthsAgo = 12
		}
		return s.listEnvelope(s.books.Recent(limitOrDefault(args.Limit, searchResultLimit), args.MonthsAgo))
	default:
		return "", fmt.Errorf("%w: unknown tool %q", domain.ErrNotFound, name)
	}
}

func limitOrDefault(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return limit
}

func (s *CatalogService) searchBooks(args toolArgs) (string, error) {
	var (
		books []*domain.Book
		err   error
	)
	switch args.SearchType {
	case "author":
		books, err = s.books.SearchByAuthor(args.Query, searchResultLimit)
	case "isbn":
		var book *domain.Book
		book, err = s.books.FindByISBN(args.Query)
		if book != nil {
			books = []*domain.Book{book}
		} else {
			books = []*domain.Book{}
		}
	default: // title
		books, err = s.books.SearchByTitle(args.Query, searchResultLimit)
	}
	return s.listEnvelope(books, err)
}

func (s *CatalogService) getBookDetails(args toolArgs) (string, error) {
	book, err := s.books.FindByISBN(args.ISBN)
	if err != nil {
		return "", err
	}
	if book == nil {
		return errorEnvelope("Book not found")
	}

	similarCount, err := s.books.SimilarCount(book.ID)
	if err != nil {
		return "", err
	}
	reviews, err := s.books.Reviews(book.ID, 3)
	if err != nil {
		return "", err
	}

	return marshalEnvelope(map[string]any{
		"success": true,
		"book":    book.Detail(similarCount, reviews),
	})
}

func (s *CatalogService) getSimilarBooks(args toolArgs) (string, error) {
	book, err := s.books.FindByISBN(args.ISBN)
	if err != nil {
		return "", err
	}
	if book == nil {
		return errorEnvelope("Book not found")
	}

	return s.listEnvelope(s.books.FindSimilar(book, limitOrDefault(args.Limit, similarResultLimit)))
}

func (s *CatalogService) listEnvelope(books []*domain.Book, err error) (string, error) {
	if err != nil {
		return "", err
	}
	summaries := make([]domain.BookSummary, 0, len(books))
	for _, b := range books {
		summaries = append(summaries, b.Summary())
	}
	return marshalEnvelope(map[string]any{"success": true, "books": summaries})
}

func errorEnvelope(message string) (string, error) {
	return marshalEnvelope(map[string]any{"success": false, "error": message})
}

func marshalEnvelope(envelope map[string]any) (string, error) {
	data, err := json.Marshal(envelope)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func schema(properties map[string]any, required ...string) json.RawMessage {
	if required == nil {
		required = []string{}
	}
	data, _ := json.Marshal(map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	return data
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func propEnum(typ, description string, values ...string) map[string]any {
	p := prop(typ, description)
	p["enum"] = values
	return p
}
