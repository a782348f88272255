package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_Neighborhood_TraversesRelations(t *testing.T) {
	m := NewMock()
	ctx := context.Background()

	require.NoError(t, m.UpsertEntities(ctx, []Entity{
		{ID: "a", DocID: "doc1", Label: "Acme"},
		{ID: "b", DocID: "doc1", Label: "Ohio"},
		{ID: "c", DocID: "doc1", Label: "Unrelated"},
	}))
	require.NoError(t, m.UpsertRelations(ctx, []Relation{
		{FromID: "a", ToID: "b", Type: "located_in"},
	}))

	n, err := m.Neighborhood(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, "a", n.Seed.ID)
	require.Len(t, n.Entities, 1)
	assert.Equal(t, "b", n.Entities[0].ID)
}

func TestMock_DeleteDocument_RemovesItsEntities(t *testing.T) {
	m := NewMock()
	ctx := context.Background()
	require.NoError(t, m.UpsertEntities(ctx, []Entity{
		{ID: "a", DocID: "doc1"},
		{ID: "b", DocID: "doc2"},
	}))

	require.NoError(t, m.DeleteDocument(ctx, "doc1"))

	n, err := m.Neighborhood(ctx, "a", 1)
	require.NoError(t, err)
	assert.Empty(t, n.Seed.ID)

	n2, err := m.Neighborhood(ctx, "b", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", n2.Seed.ID)
}
