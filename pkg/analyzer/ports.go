package analyzer

import (
	"context"

	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/store/graph"
)

// Completer is the subset of pkg/gateway.Client the analyzer needs for
// macro/explore/critique/integrate's generation calls.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Message mirrors gateway.Message so this package doesn't import
// pkg/gateway directly — kept as a tiny local type, converted by
// pkg/services' GatewayAdapter, same seam pkg/chunker uses for Embedder.
type Message struct {
	Role    string
	Content string
}

// Chunker is the subset of pkg/chunker.Chunker the prepare stage needs.
type Chunker interface {
	Chunk(ctx context.Context, docID, text string, cfg chunker.Config) (chunker.ChunkingOutcome, error)
}

// GraphWriter is the subset of pkg/store/graph.Store the explore stage
// needs to persist extracted entities/relations.
type GraphWriter interface {
	UpsertEntities(ctx context.Context, entities []graph.Entity) error
	UpsertRelations(ctx context.Context, relations []graph.Relation) error
}

// Checkpointer persists and loads a State by (doc_id, run_id), per
// spec.md §4.F: "after every stage the state object is serialized to a
// durable checkpoint... Resuming reads the last checkpoint and continues
// from the next stage." Implemented by pkg/services over pkg/store/blob.
type Checkpointer interface {
	SaveCheckpoint(ctx context.Context, state *State) error
	LoadCheckpoint(ctx context.Context, docID, runID string) (*State, error)
}

// ArtifactWriter persists the final analysis_report, per spec.md §4.F's
// output stage.
type ArtifactWriter interface {
	WriteAnalysisReport(ctx context.Context, state *State) error
}
