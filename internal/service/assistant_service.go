package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/blocks"
	"github.com/bookworm-ai/bookworm/internal/domain"
	"github.com/bookworm-ai/bookworm/internal/llm"
)

const (
	// MessageHistoryLimit is the hard cap on turns sent to the completion
	// provider; older turns are dropped, oldest first.
	MessageHistoryLimit = 20

	emptyMessagePrompt    = "How can I help you find books today?"
	defaultRecommendation = "I've found some book recommendations for you."
	providerErrorMessage  = "I'm having trouble connecting to the AI service. Please try again later."
)

// AssistantResult is the caller-facing outcome of one assistant turn.
type AssistantResult struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Blocks      []blocks.Block `json:"blocks,omitempty"`
	ToolsUsed   []string       `json:"tools_used"`
	TimestampMs int64          `json:"timestamp_ms"`
	Error       string         `json:"error,omitempty"`
}

// AssistantService turns one user message into one recorded assistant turn.
type AssistantService struct {
	provider     llm.Provider
	tools        *Toolset
	queryLog     QueryLogger
	logger       *zap.Logger
	historyLimit int
}

// NewAssistantService creates a new assistant service
func NewAssistantService(provider llm.Provider, tools *Toolset, queryLog QueryLogger, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		provider:     provider,
		tools:        tools,
		queryLog:     queryLog,
		logger:       logger,
		historyLimit: MessageHistoryLimit,
	}
}

// ProcessQuery runs one assistant turn over the given history. Failures are
// folded into the result; callers never see provider or parsing detail
// beyond the structured Error field.
func (s *AssistantService) ProcessQuery(ctx context.Context, sessionID int64, history []domain.ChatTurn, message string) *AssistantResult {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return &AssistantResult{
			Success:     true,
			Message:     emptyMessagePrompt,
			ToolsUsed:   []string{},
			TimestampMs: start.UnixMilli(),
		}
	}

	working := make([]domain.ChatTurn, 0, len(history)+1)
	working = append(working, history...)
	working = append(working, domain.ChatTurn{Role: domain.RoleUser, Content: message})
	working = boundHistory(working, s.historyLimit)

	result, err := s.provider.Run(ctx, s.systemPrompt(), s.tools.Definitions(), working)
	if err != nil {
		s.logger.Error("completion provider failed",
			zap.Int64("session_id", sessionID),
			zap.Error(err),
		)
		s.logQuery(message, err.Error(), false, start)
		return &AssistantResult{
			Success:     false,
			Message:     providerErrorMessage,
			ToolsUsed:   []string{},
			TimestampMs: start.UnixMilli(),
			Error:       err.Error(),
		}
	}

	toolsUsed := result.ToolsUsed
	if toolsUsed == nil {
		toolsUsed = []string{}
	}

	doc, parseErr := parseCompletion(result.Text)
	if parseErr != nil {
		// The user still gets the model's words; only the log records the
		// contract violation.
		s.logger.Warn("completion did not follow the block contract",
			zap.Int64("session_id", sessionID),
			zap.Error(parseErr),
		)
		s.logQuery(message, result.Text, false, start)
		return &AssistantResult{
			Success:     true,
			Message:     result.Text,
			Blocks:      []blocks.Block{blocks.TextBlock(result.Text)},
			ToolsUsed:   toolsUsed,
			TimestampMs: start.UnixMilli(),
		}
	}

	text := blocks.ExtractText(doc.Blocks)
	if text == "" {
		text = blocks.Summarize(doc.Blocks)
	}
	if text == "" {
		text = defaultRecommendation
	}

	s.logQuery(message, text, true, start)
	return &AssistantResult{
		Success:     true,
		Message:     text,
		Blocks:      doc.Blocks,
		ToolsUsed:   toolsUsed,
		TimestampMs: start.UnixMilli(),
	}
}

func parseCompletion(text string) (*blocks.Document, error) {
	doc, err := blocks.Parse(text, true)
	if err == nil {
		return doc, nil
	}

	if embedded := blocks.ExtractEmbeddedJSON(text); embedded != "" {
		if doc, retryErr := blocks.Parse(embedded, true); retryErr == nil {
			return doc, nil
		}
	}
	return nil, err
}

func boundHistory(turns []domain.ChatTurn, limit int) []domain.ChatTurn {
	if len(turns) <= limit {
		return turns
	}
	return turns[len(turns)-limit:]
}

func (s *AssistantService) logQuery(message, response string, success bool, start time.Time) {
	elapsed := int(time.Since(start).Milliseconds())
	if err := s.queryLog.Log(message, response, success, elapsed); err != nil {
		s.logger.Error("failed to record query log", zap.Error(err))
	}
}

func (s *AssistantService) systemPrompt() string {
	var b strings.Builder
	b.WriteString(`You are a knowledgeable book recommendation assistant that helps users discover books.
You have access to a catalog of books through your tools: search by title, author, or ISBN,
get detailed information, find similar books, and browse trending, genre, highly rated,
and recently published books.

When users ask about books:
1. Search for relevant books using the catalog tools
2. Provide personalized recommendations based on their interests
3. Include details like ratings, genres, and similar books
4. Be specific and mention book titles, authors, and key details

Use "book_list" blocks whenever recommending two or more books, and a "book_spotlight"
block when presenting a single book in depth. Always bracket recommendations with "text"
blocks for conversational framing.

Be friendly, informative, and enthusiastic about books!
If you cannot find specific information, acknowledge this and suggest alternatives.
`)

	if s.tools.news != nil {
		b.WriteString(`
You can also search recent book news with the search_news tool. Useful queries:
- "new book releases [genre]" for new releases
- "[author name] new book" for author-specific news
- "book award winner" for literary awards
- "bestseller list" for trending books
`)
	}

	b.WriteString("\n")
	b.WriteString(blocks.FormatInstructions())
	return b.String()
}
