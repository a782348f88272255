package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/store/vector"
)

// Retriever implements the Hybrid Retriever (spec.md §4.E): vector +
// keyword (BM25) + graph query fusion with optional rerank. Each source
// is a dependency-injected capability port per the Design Note in
// spec.md §9; a nil port is treated the same as a failed call — its
// weight is redistributed among the others.
type Retriever struct {
	Vector         VectorSearcher
	VectorEmbedder Embedder
	Keyword        KeywordSearcher
	Graph          GraphSearcher
	Reranker       Reranker
	Logger         *slog.Logger
}

// New returns a Retriever; any port may be nil to disable that source.
func New(vec VectorSearcher, embedder Embedder, keyword KeywordSearcher, graph GraphSearcher, reranker Reranker) *Retriever {
	return &Retriever{
		Vector:         vec,
		VectorEmbedder: embedder,
		Keyword:        keyword,
		Graph:          graph,
		Reranker:       reranker,
		Logger:         slog.Default(),
	}
}

// vectorCollection names the per-project vector collection.
func vectorCollection(projectID string) string {
	return "project_" + projectID
}

// Retrieve runs the full fusion algorithm. Returns an error only when
// every source fails or is unavailable, per spec.md §4.E's degrade rule.
func (r *Retriever) Retrieve(ctx context.Context, query, projectID string, opts models.RetrieveOptions) (models.RetrieveResult, error) {
	opts = fillDefaults(opts)

	var vectorHits, keywordHits, graphHitsRaw []sourceHit
	var vectorOK, keywordOK, graphOK bool

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, ok := r.searchVector(gctx, query, projectID, opts)
		vectorHits, vectorOK = hits, ok
		return nil
	})
	g.Go(func() error {
		hits, ok := r.searchKeyword(gctx, query, projectID, opts)
		keywordHits, keywordOK = hits, ok
		return nil
	})
	g.Go(func() error {
		hits, ok := r.searchGraph(gctx, query, projectID, opts)
		graphHitsRaw, graphOK = hits, ok
		return nil
	})
	_ = g.Wait() // each searcher reports failure via its ok flag, never via error

	if !vectorOK && !keywordOK && !graphOK {
		return models.RetrieveResult{}, fmt.Errorf("retriever: all sources unavailable for query %q", query)
	}

	normalizeMinMax(vectorHits)
	normalizeMinMax(keywordHits)
	normalizeMinMax(graphHitsRaw)

	w := renormalize(weights{Vector: opts.WeightVector, Keyword: opts.WeightKeyword, Graph: opts.WeightGraph},
		vectorOK, keywordOK, graphOK)

	fused := fuse(vectorHits, keywordHits, graphHitsRaw, w)

	if len(fused) > opts.TopKIntermediate {
		fused = fused[:opts.TopKIntermediate]
	}

	if opts.Rerank && r.Reranker != nil && len(fused) > 0 {
		fused = r.rerank(ctx, query, fused)
	}

	if len(fused) > opts.TopKFinal {
		fused = fused[:opts.TopKFinal]
	}

	return models.RetrieveResult{Results: fused}, nil
}

func (r *Retriever) searchVector(ctx context.Context, query, projectID string, opts models.RetrieveOptions) ([]sourceHit, bool) {
	if r.Vector == nil || r.VectorEmbedder == nil {
		return nil, false
	}
	vectors, err := r.VectorEmbedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		r.Logger.Warn("retriever: query embedding failed, vector source unavailable", "error", err)
		return nil, false
	}

	results, err := r.Vector.Search(ctx, vectorCollection(projectID), vectors[0], vectorSearchOptions(opts))
	if err != nil {
		r.Logger.Warn("retriever: vector search failed", "error", err)
		return nil, false
	}

	out := make([]sourceHit, len(results))
	for i, res := range results {
		out[i] = sourceHit{
			ChunkID: res.ID,
			Text:    textFromPayload(res.Payload),
			Score:   float64(res.Score),
			Source:  "vector",
		}
	}
	return out, true
}

func (r *Retriever) searchKeyword(ctx context.Context, query, projectID string, opts models.RetrieveOptions) ([]sourceHit, bool) {
	if r.Keyword == nil {
		return nil, false
	}
	hits, err := r.Keyword.Search(ctx, query, projectID, opts.TopKIntermediate)
	if err != nil {
		r.Logger.Warn("retriever: keyword search failed", "error", err)
		return nil, false
	}
	out := make([]sourceHit, len(hits))
	for i, h := range hits {
		out[i] = sourceHit{ChunkID: h.ChunkID, Score: h.Score, Source: "keyword"}
	}
	return out, true
}

func (r *Retriever) searchGraph(ctx context.Context, query, projectID string, opts models.RetrieveOptions) ([]sourceHit, bool) {
	if r.Graph == nil {
		return nil, false
	}
	hits, err := r.Graph.Search(ctx, query, projectID, opts.TopKIntermediate)
	if err != nil {
		r.Logger.Warn("retriever: graph search failed", "error", err)
		return nil, false
	}
	out := make([]sourceHit, len(hits))
	for i, h := range hits {
		out[i] = sourceHit{ChunkID: h.ChunkID, Text: h.Text, Score: h.Score, Source: "graph"}
	}
	return out, true
}

// rerank replaces each candidate's fused score with the reranker's
// output, preserving source_tag, then resorts descending.
func (r *Retriever) rerank(ctx context.Context, query string, candidates []models.RetrievedChunk) []models.RetrievedChunk {
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	scores, err := r.Reranker.Rerank(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		r.Logger.Warn("retriever: rerank failed, keeping fused order", "error", err)
		return candidates
	}
	for i := range candidates {
		candidates[i].Score = scores[i]
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	return candidates
}

func fillDefaults(opts models.RetrieveOptions) models.RetrieveOptions {
	d := models.DefaultRetrieveOptions()
	if opts.TopKFinal <= 0 {
		opts.TopKFinal = d.TopKFinal
	}
	if opts.TopKIntermediate <= 0 {
		opts.TopKIntermediate = d.TopKIntermediate
	}
	if opts.WeightVector == 0 && opts.WeightKeyword == 0 && opts.WeightGraph == 0 {
		opts.WeightVector, opts.WeightKeyword, opts.WeightGraph = d.WeightVector, d.WeightKeyword, d.WeightGraph
	}
	return opts
}

func vectorSearchOptions(opts models.RetrieveOptions) vector.SearchOptions {
	filter := make(map[string]any, len(opts.Filters))
	for k, v := range opts.Filters {
		filter[k] = v
	}
	return vector.SearchOptions{Limit: opts.TopKIntermediate, Filter: filter}
}

func textFromPayload(payload map[string]any) string {
	if v, ok := payload["text"].(string); ok {
		return v
	}
	return ""
}
