// Package vector implements the Vector Store capability port (spec.md
// §4.D): the Pipeline's index stage writes chunk embeddings here and the
// Hybrid Retriever runs nearest-neighbor search over them.
package vector

import "context"

// Point is one embedded chunk, addressable by ChunkID.
type Point struct {
	ID       string
	Vector   []float32
	Payload  map[string]any
}

// ScoredPoint is a Search result: a Point plus its similarity score.
type ScoredPoint struct {
	Point
	Score float32
}

// SearchOptions configures a Search call.
type SearchOptions struct {
	Limit          int
	ScoreThreshold float32
	Filter         map[string]any
	WithVectors    bool
}

// DefaultSearchOptions mirrors the pack's qdrant-adapter default shape.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: 10}
}

// Store is the capability port: project-scoped collections of chunk
// embeddings ("project_<id>"), upserted by the Pipeline's index stage and
// queried by the
// Hybrid Retriever.
type Store interface {
	EnsureCollection(ctx context.Context, collection string, dimension int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]ScoredPoint, error)
	Delete(ctx context.Context, collection string, ids []string) error
	CollectionExists(ctx context.Context, collection string) (bool, error)
	Close() error
}
