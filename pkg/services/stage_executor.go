package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/dpa/pkg/analyzer"
	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/pipeline"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
)

// StageExecutor implements pipeline.StageExecutor, wiring (B) the Hybrid
// Chunker, (C) the Embedding/LLM Gateway (through GatewayAdapter), (D)
// the Store Adapters, and (F) the Advanced Document Analyzer behind the
// four stage methods the Runner dispatches to, one method per stage kind.
type StageExecutor struct {
	Documents *DocumentService
	Chunks    *ChunkService
	Artifacts *ArtifactWriterService
	Analyzers *AnalyzerFactory

	VectorStore    vector.Store
	VectorEmbedder gatewayEmbedder
	EmbeddingModel string
}

// gatewayEmbedder is the narrow embed capability GatewayAdapter exposes,
// kept local so stage_executor.go doesn't need the full gateway.Client
// surface.
type gatewayEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NewStageExecutor wires a StageExecutor.
func NewStageExecutor(documents *DocumentService, chunks *ChunkService, artifacts *ArtifactWriterService, analyzers *AnalyzerFactory, vectorStore vector.Store, embedder gatewayEmbedder, embeddingModel string) *StageExecutor {
	return &StageExecutor{
		Documents:      documents,
		Chunks:         chunks,
		Artifacts:      artifacts,
		Analyzers:      analyzers,
		VectorStore:    vectorStore,
		VectorEmbedder: embedder,
		EmbeddingModel: embeddingModel,
	}
}

// ExecuteSummary runs the Analyzer at basic depth — prepare → macro →
// output — and relies on AnalyzerFactory's ArtifactWriter to persist the
// progressive summaries as a `summary` Artifact (see artifact_writer.go).
func (e *StageExecutor) ExecuteSummary(ctx context.Context, docID string, progress pipeline.ProgressFunc) (map[string]any, error) {
	return e.runAnalyzer(ctx, docID, analyzer.DepthBasic, progress)
}

// ExecuteIndex chunks the document, embeds each chunk, persists Chunk
// rows, and upserts vectors into the per-project collection — (B) + (C)
// + (D)'s vector adapter.
func (e *StageExecutor) ExecuteIndex(ctx context.Context, docID string, progress pipeline.ProgressFunc) (map[string]any, error) {
	doc, err := e.Documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("execute index: load document: %w", err)
	}
	text, err := e.Chunks.LoadDocumentText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("execute index: load text: %w", err)
	}
	progress(10, "loaded document text")

	outcome, err := e.Chunks.Chunker.Chunk(ctx, docID, text, chunker.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("execute index: chunk: %w", err)
	}
	progress(40, fmt.Sprintf("produced %d chunks", len(outcome.Chunks)))

	if err := e.Chunks.PersistChunks(ctx, docID, outcome.Chunks); err != nil {
		return nil, fmt.Errorf("execute index: persist chunks: %w", err)
	}
	progress(60, "persisted chunk rows")

	if e.VectorStore != nil && e.VectorEmbedder != nil && len(outcome.Chunks) > 0 {
		texts := make([]string, len(outcome.Chunks))
		for i, c := range outcome.Chunks {
			texts[i] = c.Text
		}
		vectors, err := e.VectorEmbedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("execute index: embed: %w", err)
		}
		collection := "project_" + doc.ProjectID
		if err := e.VectorStore.EnsureCollection(ctx, collection, len(vectors[0])); err != nil {
			return nil, fmt.Errorf("execute index: ensure collection: %w", err)
		}
		points := make([]vector.Point, len(outcome.Chunks))
		for i, c := range outcome.Chunks {
			points[i] = vector.Point{
				ID:     c.ContentHash,
				Vector: vectors[i],
				Payload: map[string]any{
					"chunk_id": c.ContentHash,
					"doc_id":   docID,
					"text":     c.Text,
				},
			}
		}
		if err := e.VectorStore.Upsert(ctx, collection, points); err != nil {
			return nil, fmt.Errorf("execute index: upsert vectors: %w", err)
		}
	}
	progress(100, "indexed")

	return map[string]any{"chunk_count": len(outcome.Chunks)}, nil
}

// ExecuteGraph runs the Analyzer at standard depth, which reaches the
// explore node and, through its injected GraphWriter, populates (D)'s
// graph adapter with the document's entities and relations.
func (e *StageExecutor) ExecuteGraph(ctx context.Context, docID string, progress pipeline.ProgressFunc) (map[string]any, error) {
	return e.runAnalyzer(ctx, docID, analyzer.DepthStandard, progress)
}

// ExecuteAnalysis runs the Analyzer at the requested depth end-to-end.
func (e *StageExecutor) ExecuteAnalysis(ctx context.Context, docID, depth string, progress pipeline.ProgressFunc) (map[string]any, error) {
	d := analyzer.Depth(depth)
	if d == "" {
		d = analyzer.DepthStandard
	}
	return e.runAnalyzer(ctx, docID, d, progress)
}

func (e *StageExecutor) runAnalyzer(ctx context.Context, docID string, depth analyzer.Depth, progress pipeline.ProgressFunc) (map[string]any, error) {
	doc, err := e.Documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("run analyzer: load document: %w", err)
	}
	text, err := e.Chunks.LoadDocumentText(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("run analyzer: load text: %w", err)
	}
	progress(5, "loaded document text")

	a := e.Analyzers.New()
	state := &analyzer.State{
		DocID: docID,
		RunID: uuid.New().String(),
		Depth: depth,
		Text:  text,
	}

	start := time.Now()
	final, err := a.Run(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("run analyzer: %w", err)
	}
	progress(100, "analysis complete")

	return map[string]any{
		"run_id":     final.RunID,
		"confidence": final.Confidence,
		"duration_s": time.Since(start).Seconds(),
	}, nil
}

var _ pipeline.StageExecutor = (*StageExecutor)(nil)
