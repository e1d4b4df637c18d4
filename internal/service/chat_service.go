package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

// ChatService wires session resolution, conversation persistence, and the
// assistant together for one inbound message.
type ChatService struct {
	store     ConversationStore
	assistant *AssistantService
	logger    *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(store ConversationStore, assistant *AssistantService, logger *zap.Logger) *ChatService {
	return &ChatService{store: store, assistant: assistant, logger: logger}
}

// Query records the user's turn, runs the assistant over the prior history,
// and records the assistant's extracted text. The history is loaded before
// the user message is persisted; the orchestrator appends the message to
// its own working copy.
func (s *ChatService) Query(ctx context.Context, session *domain.Session, message string) (*AssistantResult, error) {
	history, err := s.store.FormatForCompletion(session.ID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(message) != "" {
		if _, err := s.store.AppendMessage(session.ID, domain.RoleUser, message); err != nil {
			return nil, err
		}
	}

	result := s.assistant.ProcessQuery(ctx, session.ID, history, message)

	if result.Message != "" {
		if _, err := s.store.AppendMessage(session.ID, domain.RoleAssistant, result.Message); err != nil {
			s.logger.Error("failed to persist assistant turn",
				zap.Int64("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	return result, nil
}
