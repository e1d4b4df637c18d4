package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/blocks"
	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/llm"
)

func newTestAssistant(provider llm.Provider, log QueryLogger) *AssistantService {
	toolset := NewToolset(NewCatalogService(nil), nil)
	return NewAssistantService(provider, toolset, log, zap.NewNop())
}

func TestProcessQueryBlankMessage(t *testing.T) {
	provider := &stubProvider{}
	result := newTestAssistant(provider, &memQueryLog{}).ProcessQuery(context.Background(), 1, nil, "   ")

	assert.True(t, result.Success)
	assert.Equal(t, "How can I help you find books today?", result.Message)
	assert.Empty(t, result.Blocks)
	assert.NotNil(t, result.ToolsUsed)
	assert.Zero(t, provider.calls, "blank messages must not reach the provider")
}

func TestProcessQueryStructuredResponse(t *testing.T) {
	provider := &stubProvider{result: &llm.Result{
		Text:      `{"blocks":[{"type":"text","content":{"markdown":"Hi"}},{"type":"book_list","content":{"books":[]}}]}`,
		ToolsUsed: []string{"search_books"},
	}}
	log := &memQueryLog{}

	result := newTestAssistant(provider, log).ProcessQuery(context.Background(), 1, nil, "any fantasy?")

	assert.True(t, result.Success)
	assert.Equal(t, "Hi", result.Message)
	require.Len(t, result.Blocks, 2)
	assert.Equal(t, blocks.TypeBookList, result.Blocks[1].Type)
	assert.Equal(t, []string{"search_books"}, result.ToolsUsed)

	require.Len(t, log.entries, 1)
	assert.True(t, log.entries[0].success)
	assert.Equal(t, "any fantasy?", log.entries[0].query)
}

func TestProcessQueryNonJSONResponse(t *testing.T) {
	provider := &stubProvider{result: &llm.Result{Text: "not json"}}
	log := &memQueryLog{}

	result := newTestAssistant(provider, log).ProcessQuery(context.Background(), 1, nil, "hello")

	assert.True(t, result.Success)
	assert.Equal(t, "not json", result.Message)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, blocks.TypeText, result.Blocks[0].Type)
	assert.Equal(t, "not json", result.Blocks[0].Content["markdown"])

	require.Len(t, log.entries, 1)
	assert.False(t, log.entries[0].success)
}

func TestProcessQueryRecoversEmbeddedJSON(t *testing.T) {
	text := `Sure! Here you go: {"blocks":[{"type":"text","content":{"markdown":"Hi"}}]} Enjoy!`
	provider := &stubProvider{result: &llm.Result{Text: text}}
	log := &memQueryLog{}

	result := newTestAssistant(provider, log).ProcessQuery(context.Background(), 1, nil, "hello")

	assert.True(t, result.Success)
	assert.Equal(t, "Hi", result.Message)
	require.Len(t, result.Blocks, 1)
	require.Len(t, log.entries, 1)
	assert.True(t, log.entries[0].success)
}

func TestProcessQueryProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	log := &memQueryLog{}

	result := newTestAssistant(provider, log).ProcessQuery(context.Background(), 1, nil, "hello")

	assert.False(t, result.Success)
	assert.Equal(t, "I'm having trouble connecting to the AI service. Please try again later.", result.Message)
	assert.Equal(t, "connection refused", result.Error)
	assert.Empty(t, result.Blocks)

	require.Len(t, log.entries, 1)
	assert.False(t, log.entries[0].success)
}

func TestProcessQuerySummarizesStructuredOnlyResponse(t *testing.T) {
	text := `{"blocks":[{"type":"book_list","content":{"books":[{"title":"A"},{"title":"B"}]}}]}`
	provider := &stubProvider{result: &llm.Result{Text: text}}

	result := newTestAssistant(provider, &memQueryLog{}).ProcessQuery(context.Background(), 1, nil, "recs?")

	assert.Equal(t, "I showed you 2 book recommendations.", result.Message)
}

func TestProcessQueryFallsBackToDefaultMessage(t *testing.T) {
	text := `{"blocks":[{"type":"image","content":{"url":"http://example.com/cover.png"}}]}`
	provider := &stubProvider{result: &llm.Result{Text: text}}

	result := newTestAssistant(provider, &memQueryLog{}).ProcessQuery(context.Background(), 1, nil, "show me")

	assert.Equal(t, "I've found some book recommendations for you.", result.Message)
}

func TestProcessQueryBoundsHistory(t *testing.T) {
	provider := &stubProvider{result: &llm.Result{
		Text: `{"blocks":[{"type":"text","content":{"markdown":"ok"}}]}`,
	}}

	history := make([]domain.ChatTurn, 30)
	for i := range history {
		history[i] = domain.ChatTurn{Role: domain.RoleUser, Content: fmt.Sprintf("turn %d", i)}
	}

	newTestAssistant(provider, &memQueryLog{}).ProcessQuery(context.Background(), 1, history, "latest")

	require.Len(t, provider.history, MessageHistoryLimit)
	assert.Equal(t, "latest", provider.history[len(provider.history)-1].Content)
	assert.Equal(t, "turn 11", provider.history[0].Content, "oldest turns are dropped first")
}

func TestSystemPromptMentionsNewsOnlyWhenConfigured(t *testing.T) {
	withoutNews := newTestAssistant(&stubProvider{}, &memQueryLog{})
	assert.NotContains(t, withoutNews.systemPrompt(), "search_news")

	withNews := NewAssistantService(&stubProvider{},
		NewToolset(NewCatalogService(nil), NewNewsService("key")),
		&memQueryLog{}, zap.NewNop())
	assert.Contains(t, withNews.systemPrompt(), "search_news")
}
