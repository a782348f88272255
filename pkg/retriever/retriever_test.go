package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
)

type fakeEmbedder struct{ vec []float32 }

func (f fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{f.vec}, nil
}

type fakeKeyword struct{ hits []KeywordHit }

func (f fakeKeyword) Search(ctx context.Context, query, projectID string, limit int) ([]KeywordHit, error) {
	return f.hits, nil
}

type fakeGraph struct{ hits []GraphHit }

func (f fakeGraph) Search(ctx context.Context, query, projectID string, limit int) ([]GraphHit, error) {
	return f.hits, nil
}

func TestRetrieve_FusesAllThreeSources(t *testing.T) {
	store := vector.NewMock()
	require.NoError(t, store.EnsureCollection(context.Background(), "project_p1", 2))
	require.NoError(t, store.Upsert(context.Background(), "project_p1", []vector.Point{
		{ID: "c1", Vector: []float32{1, 0}, Payload: map[string]any{"text": "vector hit"}},
	}))

	r := New(store, fakeEmbedder{vec: []float32{1, 0}},
		fakeKeyword{hits: []KeywordHit{{ChunkID: "c2", Score: 2.0}}},
		fakeGraph{hits: []GraphHit{{ChunkID: "c3", Text: "graph hit", Score: 1.0}}},
		nil)

	result, err := r.Retrieve(context.Background(), "widgets", "p1", models.DefaultRetrieveOptions())
	require.NoError(t, err)
	require.Len(t, result.Results, 3)

	ids := map[string]bool{}
	for _, res := range result.Results {
		ids[res.ChunkID] = true
	}
	assert.True(t, ids["c1"])
	assert.True(t, ids["c2"])
	assert.True(t, ids["c3"])
}

func TestRetrieve_DegradesWhenVectorSourceUnavailable(t *testing.T) {
	r := New(nil, nil,
		fakeKeyword{hits: []KeywordHit{{ChunkID: "c2", Score: 2.0}}},
		fakeGraph{hits: []GraphHit{{ChunkID: "c3", Text: "graph hit", Score: 1.0}}},
		nil)

	result, err := r.Retrieve(context.Background(), "widgets", "p1", models.DefaultRetrieveOptions())
	require.NoError(t, err)
	assert.Len(t, result.Results, 2)
}

func TestRetrieve_FailsWhenAllSourcesUnavailable(t *testing.T) {
	r := New(nil, nil, nil, nil, nil)
	_, err := r.Retrieve(context.Background(), "widgets", "p1", models.DefaultRetrieveOptions())
	require.Error(t, err)
}

func TestRetrieve_TruncatesToTopKFinal(t *testing.T) {
	hits := make([]KeywordHit, 30)
	for i := range hits {
		hits[i] = KeywordHit{ChunkID: string(rune('a' + i%26)), Score: float64(30 - i)}
	}
	r := New(nil, nil, fakeKeyword{hits: hits}, nil, nil)

	opts := models.DefaultRetrieveOptions()
	opts.TopKFinal = 5
	result, err := r.Retrieve(context.Background(), "q", "p1", opts)
	require.NoError(t, err)
	assert.Len(t, result.Results, 5)
}
