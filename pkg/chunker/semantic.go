package chunker

import (
	"context"
	"log/slog"
	"math"
)

// Embedder is the capability port the chunker needs for semantic
// refinement and deduplication — a dependency-injected port per the
// Design Note in spec.md §9 ("Global singletons ... lift to
// dependency-injected capability ports"). pkg/gateway.Client implements
// this; tests use an in-memory fake.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// refineSemantics scores adjacent chunk boundaries by embedding cosine
// similarity and merges pairs whose similarity is high enough to suggest
// they were split mid-thought, per spec.md §4.B step 3. On embedder
// failure it returns the input unchanged with ok=false, which the caller
// treats as a trigger for ChunkingOutcome.Strategy=fallback. A nil embedder
// is treated the same way.
func refineSemantics(ctx context.Context, embedder Embedder, chunks []Chunk, mergeThreshold float64) ([]Chunk, bool) {
	if embedder == nil {
		slog.Warn("chunker: no embedder configured, semantic refinement skipped")
		return chunks, false
	}
	if len(chunks) < 2 {
		return chunks, true
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		slog.Warn("chunker: semantic refinement embed call failed, falling back", "error", err)
		return chunks, false
	}
	if len(vectors) != len(chunks) {
		slog.Warn("chunker: embedder returned mismatched vector count, falling back")
		return chunks, false
	}

	var merged []Chunk
	cur := chunks[0]
	curVec := vectors[0]
	for i := 1; i < len(chunks); i++ {
		sim := cosineSimilarity(curVec, vectors[i])
		if sim >= mergeThreshold && cur.EndChar == chunks[i].StartChar {
			cur = mergeChunks(cur, chunks[i])
			// Re-derive the merged vector as the running average so a long
			// merge chain doesn't anchor on the first member's vector only.
			curVec = averageVectors(curVec, vectors[i])
			continue
		}
		merged = append(merged, cur)
		cur = chunks[i]
		curVec = vectors[i]
	}
	merged = append(merged, cur)
	return merged, true
}

func mergeChunks(a, b Chunk) Chunk {
	a.EndChar = b.EndChar
	a.Text = a.Text + " " + b.Text
	a.CharCount = len(a.Text)
	a.ContentHash = contentHash(a.Text)
	return a
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func averageVectors(a, b []float32) []float32 {
	if len(a) != len(b) {
		return a
	}
	out := make([]float32, len(a))
	for i := range a {
		out[i] = (a[i] + b[i]) / 2
	}
	return out
}
