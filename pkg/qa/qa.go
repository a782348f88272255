// Package qa implements the QA Orchestrator (spec.md §4.I): retrieval-
// augmented answer synthesis with per-sentence citation enforcement and
// conversation persistence.
package qa

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

// insufficientContextAnswer is returned verbatim when retrieval comes
// back empty, per spec.md §4.I: "on empty retrieval, returns a
// structured insufficient context response rather than hallucinating".
const insufficientContextAnswer = "I don't have enough information in the indexed documents to answer that question."

// Orchestrator wires (E) the Hybrid Retriever, (C) the Gateway's
// complete operation, and conversation persistence into the single
// `answer` contract. Capability ports follow the Design Note in
// spec.md §9, same as pkg/retriever and pkg/analyzer.
type Orchestrator struct {
	Retriever         Retriever
	Completer         Completer
	ConversationStore ConversationStore
	RetrieveOptions   models.RetrieveOptions
	Logger            *slog.Logger
}

// New returns an Orchestrator with spec.md §4.E's documented retrieval
// defaults.
func New(retriever Retriever, completer Completer, store ConversationStore) *Orchestrator {
	return &Orchestrator{
		Retriever:         retriever,
		Completer:         completer,
		ConversationStore: store,
		RetrieveOptions:   models.DefaultRetrieveOptions(),
		Logger:            slog.Default(),
	}
}

// Answer implements `answer(question, project_id, conversation_id?) →
// AnswerPacket` (spec.md §4.I).
func (o *Orchestrator) Answer(ctx context.Context, req models.AskRequest) (models.AnswerPacket, error) {
	convID, history, err := o.ConversationStore.EnsureConversation(ctx, req.ConversationID, req.ProjectID)
	if err != nil {
		return models.AnswerPacket{}, fmt.Errorf("qa: ensure conversation: %w", err)
	}

	if err := o.ConversationStore.AppendMessage(ctx, convID, "user", req.Question); err != nil {
		return models.AnswerPacket{}, fmt.Errorf("qa: append user message: %w", err)
	}

	result, err := o.Retriever.Retrieve(ctx, req.Question, req.ProjectID, o.RetrieveOptions)
	if err != nil || len(result.Results) == 0 {
		if err != nil {
			o.Logger.Warn("qa: retrieval failed, returning insufficient-context response", "error", err)
		}
		packet := models.AnswerPacket{
			ConversationID:      convID,
			Answer:              insufficientContextAnswer,
			InsufficientContext: true,
		}
		if appendErr := o.ConversationStore.AppendMessage(ctx, convID, "assistant", packet.Answer); appendErr != nil {
			o.Logger.Warn("qa: append insufficient-context message failed", "error", appendErr)
		}
		return packet, nil
	}

	messages := buildMessages(req.Question, result.Results, history)
	raw, err := o.Completer.Complete(ctx, messages)
	if err != nil {
		return models.AnswerPacket{}, fmt.Errorf("qa: complete: %w", err)
	}

	if req.StrictCitations && hasUncitedSentence(raw) {
		o.Logger.Warn("qa: answer failed citation coverage under strict_citations, degrading to insufficient-context", "conversation_id", convID)
		packet := models.AnswerPacket{
			ConversationID:      convID,
			Answer:              insufficientContextAnswer,
			InsufficientContext: true,
		}
		if appendErr := o.ConversationStore.AppendMessage(ctx, convID, "assistant", packet.Answer); appendErr != nil {
			o.Logger.Warn("qa: append insufficient-context message failed", "error", appendErr)
		}
		return packet, nil
	}

	citations := extractCitations(raw, result.Results)
	answer := stripCitationMarkers(raw)

	if err := o.ConversationStore.AppendMessage(ctx, convID, "assistant", answer); err != nil {
		o.Logger.Warn("qa: append assistant message failed", "error", err)
	}

	return models.AnswerPacket{
		ConversationID: convID,
		Answer:         answer,
		Citations:      citations,
	}, nil
}
