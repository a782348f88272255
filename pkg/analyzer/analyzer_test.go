package analyzer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/store/graph"
)

type fakeChunker struct{ chunks int }

func (f fakeChunker) Chunk(ctx context.Context, docID, text string, cfg chunker.Config) (chunker.ChunkingOutcome, error) {
	n := f.chunks
	if n == 0 {
		n = 3
	}
	chunks := make([]chunker.Chunk, n)
	for i := range chunks {
		chunks[i] = chunker.Chunk{DocID: docID, Text: text, Strategy: chunker.StrategyPrimary}
	}
	return chunker.ChunkingOutcome{Chunks: chunks, Strategy: chunker.StrategyPrimary}, nil
}

// scriptedCompleter returns canned text per call count, looping the last
// entry if more calls happen than scripted responses.
type scriptedCompleter struct {
	mu        sync.Mutex
	responses []string
	failFirst int // number of leading calls that return an error
	calls     int
}

func (c *scriptedCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failFirst {
		return "", errors.New("transient backend error")
	}
	idx := c.calls - 1 - c.failFirst
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	if idx < 0 {
		return "", nil
	}
	return c.responses[idx], nil
}

type fakeGraphWriter struct {
	entities  []graph.Entity
	relations []graph.Relation
}

func (f *fakeGraphWriter) UpsertEntities(ctx context.Context, entities []graph.Entity) error {
	f.entities = append(f.entities, entities...)
	return nil
}
func (f *fakeGraphWriter) UpsertRelations(ctx context.Context, relations []graph.Relation) error {
	f.relations = append(f.relations, relations...)
	return nil
}

type fakeCheckpointer struct {
	mu    sync.Mutex
	saved []State
}

func (f *fakeCheckpointer) SaveCheckpoint(ctx context.Context, s *State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, *s)
	return nil
}
func (f *fakeCheckpointer) LoadCheckpoint(ctx context.Context, docID, runID string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].DocID == docID && f.saved[i].RunID == runID {
			s := f.saved[i]
			return &s, nil
		}
	}
	return nil, errors.New("no checkpoint found")
}

type fakeArtifactWriter struct{ written *State }

func (f *fakeArtifactWriter) WriteAnalysisReport(ctx context.Context, s *State) error {
	cp := *s
	f.written = &cp
	return nil
}

func outlineLines() string {
	return "LOGICAL:intro then body\nTOPICAL:widgets\nTEMPORAL:2024 then 2025\nCAUSAL:demand causes supply"
}

func TestAnalyzer_BasicDepth_SkipsExploreAndCritique(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"50 word summary", "200 word summary", "500 word summary", "1000 word summary", "2000 word summary",
		outlineLines(),
	}}
	artifacts := &fakeArtifactWriter{}
	checkpoints := &fakeCheckpointer{}

	a := New(fakeChunker{}, completer, nil, checkpoints, artifacts)
	s := &State{DocID: "doc1", RunID: "run1", Depth: DepthBasic, Text: "some document text"}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NodeDone, final.Current)
	assert.NotNil(t, artifacts.written)
	assert.Empty(t, final.Entities)
	assert.Empty(t, final.Claims)
	assert.NotEmpty(t, checkpoints.saved)
}

func TestAnalyzer_StandardDepth_RunsExploreButNotCritique(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"50w", "200w", "500w", "1000w", "2000w",
		outlineLines(),
		"ENTITY:tech:Widget\nENTITY:org:Acme\nRELATION:creates:Acme:Widget",
		"SUMMARY:overview\nINSIGHT:widgets matter\nACTION:ship it",
	}}
	graphWriter := &fakeGraphWriter{}
	artifacts := &fakeArtifactWriter{}

	a := New(fakeChunker{}, completer, graphWriter, nil, artifacts)
	s := &State{DocID: "doc2", RunID: "run1", Depth: DepthStandard, Text: "widgets made by acme"}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NodeDone, final.Current)
	assert.Len(t, final.Entities, 2)
	assert.Len(t, final.Relations, 1)
	assert.Empty(t, final.Claims, "critique must not run below depth=deep")
	assert.Equal(t, "overview", final.Synthesis)
	assert.Len(t, graphWriter.entities, 2)
}

func TestAnalyzer_DeepDepth_RunsCritique(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"50w", "200w", "500w", "1000w", "2000w",
		outlineLines(),
		"ENTITY:concept:Reliability",
		"CLAIM:0.8:the system is reliable:uptime logs\nBIAS:survivorship bias\nASSUMPTION:load stays constant",
		"SUMMARY:deep overview\nINSIGHT:reliability holds\nACTION:monitor load",
	}}
	a := New(fakeChunker{}, completer, nil, nil, nil)
	s := &State{DocID: "doc3", RunID: "run1", Depth: DepthDeep, Text: "a reliable system"}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NodeDone, final.Current)
	require.Len(t, final.Claims, 1)
	assert.InDelta(t, 0.8, final.EvidenceStrength, 1e-9)
	assert.Len(t, final.Biases, 1)
	assert.Greater(t, final.Confidence, 0.0)
}

func TestAnalyzer_TransientFailureRetriesThenSucceeds(t *testing.T) {
	retryBackoffMin, retryBackoffMax = 0, 0 // skip real sleeping in tests
	completer := &scriptedCompleter{
		failFirst: 1,
		responses: []string{
			"50w", "200w", "500w", "1000w", "2000w",
			outlineLines(),
		},
	}
	artifacts := &fakeArtifactWriter{}

	a := New(fakeChunker{}, completer, nil, nil, artifacts)
	s := &State{DocID: "doc4", RunID: "run1", Depth: DepthBasic, Text: "retry me"}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NodeDone, final.Current)
	assert.Greater(t, completer.calls, len(completer.responses))
}

func TestAnalyzer_PermanentFailureMarksFailedAfterMaxRetries(t *testing.T) {
	retryBackoffMin, retryBackoffMax = 0, 0
	completer := &scriptedCompleter{failFirst: 999}
	a := New(fakeChunker{}, completer, nil, nil, nil)
	s := &State{DocID: "doc5", RunID: "run1", Depth: DepthBasic, Text: "always fails"}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err, "Run itself does not return an error — failure is recorded on State")
	assert.Equal(t, NodeFailed, final.Current)
	assert.NotEmpty(t, final.FailReason)
	assert.Equal(t, maxStageRetries+1, completer.calls)
}

func TestAnalyzer_EmptyText_FailsAtPrepare(t *testing.T) {
	a := New(fakeChunker{}, &scriptedCompleter{}, nil, nil, nil)
	s := &State{DocID: "doc6", RunID: "run1", Depth: DepthBasic, Text: "   "}

	final, err := a.Run(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, NodeFailed, final.Current)
	assert.True(t, strings.Contains(final.FailReason, "no extractable text"))
}

func TestAnalyzer_ResumeFromCheckpoint_ContinuesFromNextStage(t *testing.T) {
	checkpoints := &fakeCheckpointer{}
	completer := &scriptedCompleter{responses: []string{
		"ENTITY:concept:Resume",
		"SUMMARY:resumed\nINSIGHT:it worked\nACTION:none",
	}}
	a := New(fakeChunker{}, completer, nil, checkpoints, nil)

	// Simulate a checkpoint saved right after macro completed.
	mid := &State{
		DocID: "doc7", RunID: "run1", Depth: DepthStandard, Current: NodeExplore,
		Outline: Outline{Logical: []string{"x"}},
	}
	require.NoError(t, checkpoints.SaveCheckpoint(context.Background(), mid))

	resumed, err := checkpoints.LoadCheckpoint(context.Background(), "doc7", "run1")
	require.NoError(t, err)
	assert.Equal(t, NodeExplore, resumed.Current)

	final, err := a.Run(context.Background(), resumed)
	require.NoError(t, err)
	assert.Equal(t, NodeDone, final.Current)
	assert.Equal(t, "resumed", final.Synthesis)
}
