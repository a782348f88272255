package chunker

import (
	"context"
	"sort"
	"testing"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `# Introduction

Acme widgets are the best widgets on the market. They are manufactured in
Ohio and shipped worldwide. The company was founded in 1998.

## Pricing

A standard widget costs 19.99 dollars. Bulk orders over 100 units receive a
15% discount. In summary, Acme widgets are affordable and durable.

- First bullet point about widgets
- Second bullet point about shipping
- Third bullet point about pricing

` + "```" + `
func Example() { return }
` + "```" + `
`

func TestChunker_StructuralOnly_CoversAndDoesNotOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseSemantic = false
	cfg.UseContextWindow = false
	cfg.UseSlidingWindow = false
	cfg.ExtractKeyInfo = false

	c := New(nil, textutil.ModelFamilyGeneric)
	outcome, err := c.Chunk(context.Background(), "doc-1", sampleDoc, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Chunks)
	assert.Equal(t, StrategyPrimary, outcome.Strategy)

	sorted := append([]Chunk(nil), outcome.Chunks...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartChar < sorted[j].StartChar })

	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqualf(t, sorted[i-1].EndChar, sorted[i].StartChar,
			"primary chunks must not overlap: chunk %d ends at %d, chunk %d starts at %d",
			i-1, sorted[i-1].EndChar, i, sorted[i].StartChar)
	}

	assert.Equal(t, 0, sorted[0].StartChar)
	assert.Equal(t, len(sampleDoc), sorted[len(sorted)-1].EndChar)
}

func TestChunker_EmptyText_ReturnsChunkingError(t *testing.T) {
	c := New(nil, textutil.ModelFamilyGeneric)
	_, err := c.Chunk(context.Background(), "doc-1", "   \n  ", DefaultConfig())
	require.Error(t, err)
	var ce *ChunkingError
	require.ErrorAs(t, err, &ce)
}

func TestChunker_InvalidConfig_ReturnsChunkingError(t *testing.T) {
	c := New(nil, textutil.ModelFamilyGeneric)
	cfg := DefaultConfig()
	cfg.MinChunkSize = 5000
	cfg.MaxChunkSize = 100
	_, err := c.Chunk(context.Background(), "doc-1", sampleDoc, cfg)
	require.Error(t, err)
}

func TestChunker_EmbedderFailure_DegradesToFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtractKeyInfo = false

	c := New(failingEmbedder{}, textutil.ModelFamilyGeneric)
	outcome, err := c.Chunk(context.Background(), "doc-1", sampleDoc, cfg)
	require.NoError(t, err)
	assert.Equal(t, StrategyFallback, outcome.Strategy)
	assert.NotEmpty(t, outcome.Warning)
	assert.NotEmpty(t, outcome.Chunks)
}

func TestChunker_SlidingWindow_OverlapsByConfiguredAmount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseSlidingWindow = true
	cfg.UseSemantic = false
	cfg.UseContextWindow = false
	cfg.ExtractKeyInfo = false
	cfg.TargetChunkSize = 20
	cfg.Overlap = 5
	cfg.MinChunkSize = 5
	cfg.MaxChunkSize = 40

	longDoc := ""
	for i := 0; i < 200; i++ {
		longDoc += "word "
	}

	windows := slidingWindowChunks("doc-1", longDoc, cfg, textutil.ModelFamilyGeneric)
	require.Greater(t, len(windows), 2)
	for i := 1; i < len(windows); i++ {
		assert.LessOrEqual(t, windows[i].StartChar, windows[i-1].EndChar,
			"sliding window chunks should overlap, unlike the primary partition")
	}
}

func TestExtractKeyInfo_FindsDefinitionsAndConclusions(t *testing.T) {
	chunks := []Chunk{
		{
			DocID:     "doc-1",
			Text:      "A widget is a small manufactured device. In summary, widgets sell well. Random filler sentence here.",
			ChunkType: TypeBody,
		},
	}
	extra := extractKeyInfo(chunks)
	require.NotEmpty(t, extra)
	for _, c := range extra {
		assert.Equal(t, TypeKeyInfo, c.ChunkType)
		assert.Equal(t, "doc-1", c.DocID)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, assert.AnError
}
