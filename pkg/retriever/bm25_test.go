package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25Index_Search_RanksMoreRelevantDocHigher(t *testing.T) {
	idx := BuildBM25Index([]BM25Document{
		{ChunkID: "a", Text: "widgets are manufactured in ohio and shipped worldwide"},
		{ChunkID: "b", Text: "the weather in ohio is often cloudy during winter"},
		{ChunkID: "c", Text: "widgets widgets widgets manufacturing quality control process"},
	})

	hits := idx.Search("widgets manufacturing", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "c", hits[0].ChunkID)
}

func TestBM25Index_Search_EmptyQueryReturnsNoHits(t *testing.T) {
	idx := BuildBM25Index([]BM25Document{{ChunkID: "a", Text: "some text"}})
	hits := idx.Search("", 10)
	assert.Empty(t, hits)
}

func TestBM25Index_Search_RespectsLimit(t *testing.T) {
	idx := BuildBM25Index([]BM25Document{
		{ChunkID: "a", Text: "apple banana"},
		{ChunkID: "b", Text: "apple banana cherry"},
		{ChunkID: "c", Text: "apple"},
	})
	hits := idx.Search("apple banana", 2)
	assert.Len(t, hits, 2)
}
