package qa

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

type fakeRetriever struct {
	result models.RetrieveResult
	err    error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, query, projectID string, opts models.RetrieveOptions) (models.RetrieveResult, error) {
	return f.result, f.err
}

type fakeCompleter struct {
	response string
	err      error
	lastMsgs []Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	f.lastMsgs = messages
	return f.response, f.err
}

type fakeConversationStore struct {
	mu       sync.Mutex
	nextID   int
	history  map[string][]Message
	messages []string // role:content, in append order
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{history: make(map[string][]Message)}
}

func (f *fakeConversationStore) EnsureConversation(ctx context.Context, conversationID *string, projectID string) (string, []Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conversationID != nil {
		return *conversationID, f.history[*conversationID], nil
	}
	f.nextID++
	id := "conv-1"
	return id, nil, nil
}

func (f *fakeConversationStore) AppendMessage(ctx context.Context, conversationID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[conversationID] = append(f.history[conversationID], Message{Role: role, Content: content})
	f.messages = append(f.messages, role+":"+content)
	return nil
}

func TestAnswer_HappyPath_ExtractsCitationsAndStripsMarkers(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{Results: []models.RetrievedChunk{
		{ChunkID: "c1", Text: "Go was released in 2009.", Score: 0.9},
	}}}
	completer := &fakeCompleter{response: "Go was released in 2009 [chunk:c1]."}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{Question: "When was Go released?", ProjectID: "p1"})
	require.NoError(t, err)

	assert.False(t, packet.InsufficientContext)
	assert.NotContains(t, packet.Answer, "[chunk:")
	require.Len(t, packet.Citations, 1)
	assert.Equal(t, "c1", packet.Citations[0].ChunkID)
	assert.Equal(t, 0.9, packet.Citations[0].Score)

	assert.Contains(t, store.messages, "user:When was Go released?")
	assert.Len(t, store.messages, 2)
}

func TestAnswer_EmptyRetrieval_ReturnsInsufficientContextWithoutCallingCompleter(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{}}
	completer := &fakeCompleter{response: "should never be used"}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{Question: "anything", ProjectID: "p1"})
	require.NoError(t, err)

	assert.True(t, packet.InsufficientContext)
	assert.Nil(t, completer.lastMsgs)
	assert.Empty(t, packet.Citations)
}

func TestAnswer_RetrieverError_DegradesToInsufficientContext(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("vector store unavailable")}
	completer := &fakeCompleter{}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{Question: "anything", ProjectID: "p1"})
	require.NoError(t, err)
	assert.True(t, packet.InsufficientContext)
}

func TestAnswer_StrictCitations_UncitedSentenceDegrades(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{Results: []models.RetrievedChunk{
		{ChunkID: "c1", Text: "some text", Score: 0.5},
	}}}
	completer := &fakeCompleter{response: "This sentence has no citation at all."}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{
		Question: "q", ProjectID: "p1", StrictCitations: true,
	})
	require.NoError(t, err)
	assert.True(t, packet.InsufficientContext)
}

func TestAnswer_StrictCitations_FullyCitedAnswerPasses(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{Results: []models.RetrievedChunk{
		{ChunkID: "c1", Text: "some text", Score: 0.5},
	}}}
	completer := &fakeCompleter{response: "Every sentence is cited [chunk:c1]. So is this one [chunk:c1]."}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{
		Question: "q", ProjectID: "p1", StrictCitations: true,
	})
	require.NoError(t, err)
	assert.False(t, packet.InsufficientContext)
}

func TestAnswer_UnknownCitationMarkerIsDropped(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{Results: []models.RetrievedChunk{
		{ChunkID: "c1", Text: "some text", Score: 0.5},
	}}}
	completer := &fakeCompleter{response: "Hallucinated reference [chunk:does-not-exist]."}
	store := newFakeConversationStore()

	o := New(retriever, completer, store)
	packet, err := o.Answer(context.Background(), models.AskRequest{Question: "q", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, packet.Citations, "a citation marker for an id the retriever never returned must not surface")
}

func TestAnswer_ExistingConversationReplaysBoundedHistory(t *testing.T) {
	retriever := &fakeRetriever{result: models.RetrieveResult{Results: []models.RetrievedChunk{{ChunkID: "c1", Score: 0.1}}}}
	completer := &fakeCompleter{response: "ok [chunk:c1]."}
	store := newFakeConversationStore()
	store.history["conv-existing"] = []Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	o := New(retriever, completer, store)
	convID := "conv-existing"
	_, err := o.Answer(context.Background(), models.AskRequest{
		Question: "follow up", ProjectID: "p1", ConversationID: &convID,
	})
	require.NoError(t, err)

	require.NotEmpty(t, completer.lastMsgs)
	var sawEarlier bool
	for _, m := range completer.lastMsgs {
		if m.Content == "earlier question" {
			sawEarlier = true
		}
	}
	assert.True(t, sawEarlier, "prior conversation turns must be replayed into the prompt")
}
