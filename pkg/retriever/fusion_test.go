package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMinMax_ScalesToUnitRange(t *testing.T) {
	hits := []sourceHit{{Score: 10}, {Score: 20}, {Score: 30}}
	normalizeMinMax(hits)
	assert.Equal(t, 0.0, hits[0].Score)
	assert.Equal(t, 0.5, hits[1].Score)
	assert.Equal(t, 1.0, hits[2].Score)
}

func TestNormalizeMinMax_AllEqualScoresMapToOne(t *testing.T) {
	hits := []sourceHit{{Score: 5}, {Score: 5}}
	normalizeMinMax(hits)
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Equal(t, 1.0, hits[1].Score)
}

func TestRenormalize_RedistributesFailedSourceWeight(t *testing.T) {
	w := weights{Vector: 0.4, Keyword: 0.35, Graph: 0.25}
	out := renormalize(w, true, true, false)
	assert.InDelta(t, 0.4/0.75, out.Vector, 1e-9)
	assert.InDelta(t, 0.35/0.75, out.Keyword, 1e-9)
	assert.Equal(t, 0.0, out.Graph)
	assert.InDelta(t, 1.0, out.Vector+out.Keyword+out.Graph, 1e-9)
}

func TestFuse_SumsScoresAcrossSourcesAndTagsFused(t *testing.T) {
	vectorHits := []sourceHit{{ChunkID: "c1", Text: "hello", Score: 1.0, Source: "vector"}}
	keywordHits := []sourceHit{{ChunkID: "c1", Text: "hello", Score: 1.0, Source: "keyword"}}
	graphHits := []sourceHit{{ChunkID: "c2", Text: "other", Score: 1.0, Source: "graph"}}

	out := fuse(vectorHits, keywordHits, graphHits, weights{Vector: 0.4, Keyword: 0.35, Graph: 0.25})

	if len(out) != 2 {
		t.Fatalf("expected 2 fused results, got %d", len(out))
	}
	assert.Equal(t, "c1", out[0].ChunkID)
	assert.Equal(t, "fused", out[0].SourceTag)
	assert.InDelta(t, 0.75, out[0].Score, 1e-9)
	assert.Equal(t, "graph", out[1].SourceTag)
}
