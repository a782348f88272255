// Package gateway implements the capability port to the embedding/LLM
// backend: embed, complete, and stream_complete (spec.md §4.C). It is a
// gRPC client only — the backend service itself lives outside this
// repository.
package gateway

// Role identifies a chat message's author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// EmbedRequest asks the backend to embed a batch of texts with one model.
type EmbedRequest struct {
	Texts []string `json:"texts"`
	Model string   `json:"model"`
}

// EmbedResponse returns one vector per input text, same order.
type EmbedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// CompleteRequest asks the backend for a single non-streaming completion.
type CompleteRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	Temperature *float32  `json:"temperature,omitempty"`
	MaxTokens   *int32    `json:"max_tokens,omitempty"`
}

// CompleteResponse is a completed, non-streaming answer.
type CompleteResponse struct {
	Content string `json:"content"`
}

// StreamChunk is one frame of a streamed completion (thinking/response/
// error frames), as delivered by Client.StreamComplete.
type StreamChunk struct {
	Content    string `json:"content"`
	IsThinking bool   `json:"is_thinking"`
	IsComplete bool   `json:"is_complete"`
	IsFinal    bool   `json:"is_final"`
	Error      string `json:"error,omitempty"`
}
