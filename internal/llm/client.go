// Package llm wraps an OpenAI-compatible chat completion API behind the
// Provider interface the assistant depends on, including autonomous tool
// execution.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// maxToolRounds bounds the tool-call loop for a single completion.
const maxToolRounds = 8

// ToolDescriptor describes one function the model may call.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
}

// ToolExecutor dispatches a tool call by name. Implementations return the
// JSON-encoded tool result; execution errors are reported back to the model
// as the tool output rather than aborting the run.
type ToolExecutor interface {
	Execute(ctx context.Context, name, argumentsJSON string) (string, error)
}

// Result is the final outcome of one completion run.
type Result struct {
	Text      string
	ToolsUsed []string
}

// Provider is the completion abstraction the assistant orchestrator
// depends on.
type Provider interface {
	Run(ctx context.Context, systemPrompt string, tools []ToolDescriptor, history []domain.ChatTurn) (*Result, error)
}

// Config represents completion client configuration.
type Config struct {
	Provider    string // openai, deepseek, openrouter, ollama, or any compatible
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     int // request timeout in seconds (default 30)
}

// Client calls an OpenAI-compatible API and auto-executes tool calls.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	executor    ToolExecutor
	logger      *zap.Logger
}

// NewClient creates a completion client. The executor may be nil when no
// tools are offered.
func NewClient(cfg Config, executor ToolExecutor, logger *zap.Logger) (*Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	switch cfg.Provider {
	case "openai", "":
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
	case "deepseek":
		clientConfig.BaseURL = orDefault(cfg.BaseURL, "https://api.deepseek.com")
	case "openrouter":
		clientConfig.BaseURL = orDefault(cfg.BaseURL, "https://openrouter.ai/api/v1")
	case "ollama":
		clientConfig.BaseURL = orDefault(cfg.BaseURL, "http://localhost:11434/v1")
	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("base URL required for provider %q", cfg.Provider)
		}
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     time.Duration(timeout) * time.Second,
		executor:    executor,
		logger:      logger,
	}, nil
}

// Run sends the system prompt and history to the model, executing any tool
// calls it issues until it produces a final textual answer. Tool names are
// collected deduplicated, in order of first use.
func (c *Client) Run(ctx context.Context, systemPrompt string, tools []ToolDescriptor, history []domain.ChatTurn) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	openaiTools := make([]openai.Tool, len(tools))
	for i, t := range tools {
		openaiTools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}

	var toolsUsed []string
	seen := map[string]bool{}

	for round := 0; round <= maxToolRounds; round++ {
		req := openai.ChatCompletionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages:    messages,
		}
		if len(openaiTools) > 0 {
			req.Tools = openaiTools
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("empty response from completion provider")
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return &Result{Text: choice.Message.Content, ToolsUsed: toolsUsed}, nil
		}

		messages = append(messages, choice.Message)
		for _, call := range choice.Message.ToolCalls {
			name := call.Function.Name
			if !seen[name] {
				seen[name] = true
				toolsUsed = append(toolsUsed, name)
			}

			output := c.executeTool(ctx, name, call.Function.Arguments)
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    output,
			})
		}
	}

	return nil, fmt.Errorf("tool call loop exceeded %d rounds", maxToolRounds)
}

func (c *Client) executeTool(ctx context.Context, name, arguments string) string {
	if c.executor == nil {
		return `{"success":false,"error":"no tools available"}`
	}

	output, err := c.executor.Execute(ctx, name, arguments)
	if err != nil {
		c.logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.Error(err),
		)
		result, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
		return string(result)
	}

	c.logger.Debug("tool executed",
		zap.String("tool", name),
		zap.Int("output_bytes", len(output)),
	)
	return output
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
