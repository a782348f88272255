package qa

import (
	"fmt"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

const systemPrompt = `You are a document question-answering assistant. Answer the user's
question using only the provided context chunks. For every sentence that draws
on a chunk, append a citation marker of the form [chunk:<chunk_id>] immediately
before the sentence's closing punctuation. Never cite a chunk id that was not
provided. If the context does not contain enough information to answer, say so
plainly instead of guessing.`

// buildMessages assembles the completion request: system instructions,
// a bounded slice of prior conversation history, and a user turn
// carrying the retrieved context plus the question.
func buildMessages(question string, retrieved []models.RetrievedChunk, history []Message) []Message {
	messages := []Message{{Role: "system", Content: systemPrompt}}
	messages = append(messages, boundedHistory(history, maxHistoryTurns)...)
	messages = append(messages, Message{Role: "user", Content: userTurn(question, retrieved)})
	return messages
}

// maxHistoryTurns bounds how much prior conversation is replayed into
// the prompt, keeping token usage predictable regardless of how long a
// conversation has grown.
const maxHistoryTurns = 10

func boundedHistory(history []Message, maxTurns int) []Message {
	if len(history) <= maxTurns {
		return history
	}
	return history[len(history)-maxTurns:]
}

func userTurn(question string, retrieved []models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Context chunks:\n")
	for _, c := range retrieved {
		fmt.Fprintf(&b, "[chunk:%s] (score %.3f) %s\n", c.ChunkID, c.Score, c.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
