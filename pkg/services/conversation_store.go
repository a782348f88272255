package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/message"
	"github.com/codeready-toolchain/dpa/pkg/qa"
)

// ConversationStore implements qa.ConversationStore over ent's
// Conversation/Message schema, collapsed into one adapter since pkg/qa's
// port only needs the two operations the Orchestrator actually calls.
type ConversationStore struct {
	client *ent.Client
}

// NewConversationStore returns a ConversationStore.
func NewConversationStore(client *ent.Client) *ConversationStore {
	return &ConversationStore{client: client}
}

// EnsureConversation returns conversationID as-is if set (loading its
// history), or starts a new conversation scoped to projectID.
func (s *ConversationStore) EnsureConversation(ctx context.Context, conversationID *string, projectID string) (string, []qa.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conversationID != nil && *conversationID != "" {
		msgs, err := s.client.Message.Query().
			Where(message.ConversationID(*conversationID)).
			Order(ent.Asc(message.FieldCreatedAt)).
			All(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("conversation store: load history: %w", err)
		}
		history := make([]qa.Message, len(msgs))
		for i, m := range msgs {
			history[i] = qa.Message{Role: string(m.Role), Content: m.Content}
		}
		return *conversationID, history, nil
	}

	id := uuid.New().String()
	_, err := s.client.Conversation.Create().
		SetID(id).
		SetProjectID(projectID).
		Save(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("conversation store: create: %w", err)
	}
	return id, nil, nil
}

// AppendMessage records one turn.
func (s *ConversationStore) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.client.Message.Create().
		SetID(uuid.New().String()).
		SetConversationID(conversationID).
		SetRole(message.Role(role)).
		SetContent(content).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("conversation store: append: %w", err)
	}
	return nil
}

var _ qa.ConversationStore = (*ConversationStore)(nil)
