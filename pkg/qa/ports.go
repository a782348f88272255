package qa

import (
	"context"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

// Message is one turn of the conversation sent to the completion
// backend. Deliberately decoupled from gateway.Message, same seam as
// pkg/analyzer.Message — the Orchestrator's callers adapt their own
// completion client to this shape rather than pkg/qa importing
// pkg/gateway directly.
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// Retriever is the capability port onto (E) the Hybrid Retriever.
// Satisfied directly by *retriever.Retriever's Retrieve method.
type Retriever interface {
	Retrieve(ctx context.Context, query, projectID string, opts models.RetrieveOptions) (models.RetrieveResult, error)
}

// Completer is the capability port onto (C) the Embedding/LLM Gateway's
// complete operation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ConversationStore persists the Conversation/Message rows spec.md §4.I
// requires ("appends user and assistant messages to the conversation").
// Implemented by pkg/services over ent.
type ConversationStore interface {
	// EnsureConversation returns an existing conversation's prior
	// messages (most-recent-last) when conversationID is non-nil, or
	// creates a new conversation for projectID and returns its id with
	// an empty history.
	EnsureConversation(ctx context.Context, conversationID *string, projectID string) (id string, history []Message, err error)

	// AppendMessage records one turn of the conversation.
	AppendMessage(ctx context.Context, conversationID, role, content string) error
}
