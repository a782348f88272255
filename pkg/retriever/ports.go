package retriever

import (
	"context"

	"github.com/codeready-toolchain/dpa/pkg/store/vector"
)

// VectorSearcher is the subset of vector.Store the retriever needs —
// satisfied directly by vector.Store (and its Mock).
type VectorSearcher interface {
	Search(ctx context.Context, collection string, query []float32, opts vector.SearchOptions) ([]vector.ScoredPoint, error)
}

// Embedder produces the query's embedding vector, satisfied by
// pkg/gateway.Client (shared with pkg/chunker.Embedder's method set).
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// KeywordSearcher runs the BM25 pass over a project's chunk text corpus.
// pkg/services implements this by building a BM25Index from ent-stored
// chunks; the BM25 algorithm itself lives in this package (bm25.go) since
// it's pure scoring logic, not storage.
type KeywordSearcher interface {
	Search(ctx context.Context, query, projectID string, limit int) ([]KeywordHit, error)
}

// GraphHit is one chunk surfaced by matching a query term to a graph
// entity and following its relations.
type GraphHit struct {
	ChunkID string
	Text    string
	Score   float64
}

// GraphSearcher finds entities matching query terms and returns the
// chunks linked to them, per spec.md §4.E step 2. Implemented by
// pkg/services, which matches entity labels through
// pkg/store/graph.Store.FindByLabel and expands them through
// pkg/store/graph.Store.Neighborhood.
type GraphSearcher interface {
	Search(ctx context.Context, query, projectID string, limit int) ([]GraphHit, error)
}

// Reranker re-scores the top intermediate candidates using the gateway's
// completion capability, per spec.md §4.E step 4 ("rerank via (C) using
// an LLM or cross-encoder when available").
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string) ([]float64, error)
}
