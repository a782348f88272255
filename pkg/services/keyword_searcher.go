package services

import (
	"context"
	"fmt"

	"github.com/codeready-toolchain/dpa/ent"
	"github.com/codeready-toolchain/dpa/ent/chunk"
	"github.com/codeready-toolchain/dpa/ent/document"
	"github.com/codeready-toolchain/dpa/pkg/retriever"
)

// KeywordSearcherService implements retriever.KeywordSearcher: a fresh
// BM25 index built from a project's chunk corpus per call. No caching —
// spec.md §9 calls out the BM25 index as a Design Note: "rebuild from
// the chunk table rather than maintain a separate keyword index store".
type KeywordSearcherService struct {
	client *ent.Client
}

// NewKeywordSearcherService returns a KeywordSearcherService.
func NewKeywordSearcherService(client *ent.Client) *KeywordSearcherService {
	return &KeywordSearcherService{client: client}
}

// Search runs BM25 over projectID's chunks.
func (s *KeywordSearcherService) Search(ctx context.Context, query, projectID string, limit int) ([]retriever.KeywordHit, error) {
	chunks, err := s.client.Chunk.Query().
		Where(chunk.HasDocumentWith(document.ProjectID(projectID))).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("keyword searcher: load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	docs := make([]retriever.BM25Document, len(chunks))
	for i, c := range chunks {
		docs[i] = retriever.BM25Document{ChunkID: c.ID, Text: c.Text}
	}

	idx := retriever.BuildBM25Index(docs)
	return idx.Search(query, limit), nil
}

var _ retriever.KeywordSearcher = (*KeywordSearcherService)(nil)
