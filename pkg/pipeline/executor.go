package pipeline

import "context"

// StageExecutor delegates each stage's actual work, per spec.md §4.G's
// contract: SUMMARY → analyzer.macro trimmed to a summary artifact,
// INDEX → chunk+embed+upsert vectors, GRAPH → analyzer.explore's
// entities/relations written to the graph store, ANALYSIS → a full
// analyzer run at the requested depth. Implemented by pkg/services,
// which wires pkg/chunker, pkg/gateway, pkg/store, and pkg/analyzer
// behind these four methods — the runner itself never imports them
// directly, same DI-capability-port seam as pkg/retriever's searchers.
type StageExecutor interface {
	ExecuteSummary(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error)
	ExecuteIndex(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error)
	ExecuteGraph(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error)
	ExecuteAnalysis(ctx context.Context, docID, depth string, progress ProgressFunc) (map[string]any, error)
}

// Publisher emits a stage's lifecycle events to the Progress Bus (H) —
// implemented by pkg/progress.Bus. A nil Publisher is a valid no-op for
// tests and offline runs.
type Publisher interface {
	PublishStageEvent(ctx context.Context, pipelineID string, snapshot StageRecord)
	PublishPipelineEvent(ctx context.Context, pipelineID string, snapshot PipelineRecord)
}
