package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_UpsertAndSearch_OrdersByScore(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	require.NoError(t, m.EnsureCollection(ctx, "docs", 3))
	require.NoError(t, m.Upsert(ctx, "docs", []Point{
		{ID: "a", Vector: []float32{1, 0, 0}},
		{ID: "b", Vector: []float32{0, 1, 0}},
		{ID: "c", Vector: []float32{0.9, 0.1, 0}},
	}))

	results, err := m.Search(ctx, "docs", []float32{1, 0, 0}, SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
}

func TestMock_Search_AppliesPayloadFilter(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, m.Upsert(ctx, "docs", []Point{
		{ID: "a", Vector: []float32{1, 0}, Payload: map[string]any{"doc_id": "d1"}},
		{ID: "b", Vector: []float32{1, 0}, Payload: map[string]any{"doc_id": "d2"}},
	}))

	results, err := m.Search(ctx, "docs", []float32{1, 0}, SearchOptions{Limit: 10, Filter: map[string]any{"doc_id": "d2"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

func TestMock_Delete_RemovesPoints(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, m.Upsert(ctx, "docs", []Point{{ID: "a", Vector: []float32{1, 0}}}))
	require.NoError(t, m.Delete(ctx, "docs", []string{"a"}))

	results, err := m.Search(ctx, "docs", []float32{1, 0}, SearchOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMock_CollectionExists(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	exists, err := m.CollectionExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.EnsureCollection(ctx, "docs", 2))
	exists, err = m.CollectionExists(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, exists)
}
