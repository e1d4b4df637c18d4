package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/llm"
)

// Toolset combines the catalog tools with the optional news tool into the
// single executor handed to the completion provider.
type Toolset struct {
	catalog *CatalogService
	news    *NewsService
}

// NewToolset creates a toolset. news may be nil when no API key is
// configured.
func NewToolset(catalog *CatalogService, news *NewsService) *Toolset {
	return &Toolset{catalog: catalog, news: news}
}

// Definitions returns all tool descriptors offered to the model.
func (t *Toolset) Definitions() []llm.ToolDescriptor {
	defs := t.catalog.Definitions()
	if t.news != nil {
		defs = append(defs, t.news.Definition())
	}
	return defs
}

// Execute dispatches one tool call by name.
func (t *Toolset) Execute(ctx context.Context, name, argumentsJSON string) (string, error) {
	if name == "search_news" {
		if t.news == nil {
			return "", fmt.Errorf("%w: unknown tool %q", domain.ErrNotFound, name)
		}
		var args struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := json.Unmarshal([]byte(argumentsJSON), &args); err != nil {
			return "", fmt.Errorf("%w: bad tool arguments: %v", domain.ErrInvalidRequest, err)
		}
		return t.news.Search(ctx, args.Query, args.Limit)
	}
	return t.catalog.Execute(ctx, name, argumentsJSON)
}
