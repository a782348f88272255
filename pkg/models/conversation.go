package models

import "github.com/codeready-toolchain/dpa/ent"

// AskRequest is the request for the `ask` operation (spec.md §4.I, §6).
type AskRequest struct {
	Question         string  `json:"question"`
	ProjectID        string  `json:"project_id"`
	ConversationID   *string `json:"conversation_id,omitempty"`
	StrictCitations  bool    `json:"strict_citations,omitempty"`
}

// Citation references a Chunk that supports a sentence of an answer.
type Citation struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
}

// AnswerPacket is the result of `ask`.
type AnswerPacket struct {
	ConversationID    string     `json:"conversation_id"`
	Answer            string     `json:"answer"`
	Citations         []Citation `json:"citations"`
	InsufficientContext bool     `json:"insufficient_context"`
}

// ConversationResponse wraps a Conversation with its Messages loaded.
type ConversationResponse struct {
	*ent.Conversation
}
