package chunker

import "context"

// deduplicateSemantic removes near-duplicate chunks using pairwise cosine
// similarity of their embeddings, keeping the higher-quality representative
// of each near-duplicate pair, per spec.md §4.B step 7. Distinct from
// refineSemantics (step 3), which merges adjacent chunks mid-pass; this step
// runs last, over the full candidate set (primary + sliding window + key
// info), and compares non-adjacent pairs too.
//
// Quality at this point is approximated by chunk length proximity to
// target_chunk_size, since scoreQuality (step 8) runs after dedup — see
// spec.md §4.B step ordering.
func deduplicateSemantic(ctx context.Context, embedder Embedder, chunks []Chunk, threshold float64, targetSize int) ([]Chunk, bool) {
	if embedder == nil || len(chunks) < 2 || threshold <= 0 {
		return chunks, true
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil || len(vectors) != len(chunks) {
		return chunks, false
	}

	dropped := make([]bool, len(chunks))
	for i := 0; i < len(chunks); i++ {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(chunks); j++ {
			if dropped[j] {
				continue
			}
			if cosineSimilarity(vectors[i], vectors[j]) < threshold {
				continue
			}
			loser := j
			if lengthFit(chunks[j], targetSize) > lengthFit(chunks[i], targetSize) {
				loser = i
			}
			dropped[loser] = true
			if loser == i {
				break
			}
		}
	}

	out := make([]Chunk, 0, len(chunks))
	for i, c := range chunks {
		if !dropped[i] {
			out = append(out, c)
		}
	}
	return out, true
}

func lengthFit(c Chunk, targetSize int) float64 {
	if targetSize <= 0 {
		return 0
	}
	diff := c.CharCount - targetSize
	if diff < 0 {
		diff = -diff
	}
	return 1.0 / (1.0 + float64(diff)/float64(targetSize))
}
