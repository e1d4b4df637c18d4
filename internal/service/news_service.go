package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bookworm-ai/bookworm/internal/llm"
)

const newsEndpoint = "https://newsapi.org/v2/everything"

// NewsService exposes a book-news lookup tool backed by newsapi.org. It is
// only wired in when an API key is configured.
type NewsService struct {
	apiKey string
	client *http.Client
}

// NewNewsService creates a new news service
func NewNewsService(apiKey string) *NewsService {
	return &NewsService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Definition returns the tool descriptor for the news lookup.
func (s *NewsService) Definition() llm.ToolDescriptor {
	return llm.ToolDescriptor{
		Name:        "search_news",
		Description: "Search recent news for book releases, author updates, awards, and bestseller lists",
		Parameters: schema(map[string]any{
			"query": prop("string", "The news search query"),
			"limit": prop("integer", "Maximum number of articles to return"),
		}, "query"),
	}
}

type newsArticle struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// Search queries the news API and returns the JSON envelope fed back to the
// model.
func (s *NewsService) Search(ctx context.Context, query string, limit int) (string, error) {
	if limit <= 0 || limit > 10 {
		limit = 5
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", fmt.Sprintf("%d", limit))
	params.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("news lookup failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("news lookup failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("news lookup failed: %w", err)
	}

	articles := make([]newsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, newsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}

	return marshalEnvelope(map[string]any{"success": true, "articles": articles})
}
