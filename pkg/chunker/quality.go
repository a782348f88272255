package chunker

import "github.com/codeready-toolchain/dpa/pkg/textutil"

// scoreQuality assigns each chunk a [0,1] quality_score combining how well
// its length fits the target, whether it landed on a structural boundary,
// a bonus for key_info chunks, and a penalty for a missing/degenerate
// embedding, per spec.md §4.B step 8. The score is stored on the Chunk
// row; pkg/retriever does not read it.
func scoreQuality(chunks []Chunk, cfg Config, tokenFamily textutil.ModelFamily) {
	for i := range chunks {
		c := &chunks[i]

		tokens := textutil.EstimateTokens(c.Text, tokenFamily)
		lengthScore := targetFit(tokens, cfg.TargetChunkSize, cfg.MinChunkSize, cfg.MaxChunkSize)

		boundaryScore := 0.5
		switch c.ChunkType {
		case TypeHeading, TypeList, TypeCode, TypeTable:
			boundaryScore = 1.0
		case TypeKeyInfo:
			boundaryScore = 0.8
		}

		embeddingScore := 0.5
		if len(c.Embedding) > 0 {
			if vectorNorm(c.Embedding) > 0 {
				embeddingScore = 1.0
			} else {
				embeddingScore = 0.0
			}
		}

		score := 0.5*lengthScore + 0.3*boundaryScore + 0.2*embeddingScore
		if c.ChunkType == TypeKeyInfo {
			score += 0.1
		}
		if score > 1.0 {
			score = 1.0
		}
		c.QualityScore = score
	}
}

func targetFit(tokens, target, min, max int) float64 {
	if tokens < min {
		if min == 0 {
			return 0
		}
		return float64(tokens) / float64(min)
	}
	if tokens > max {
		over := tokens - max
		return 1.0 / (1.0 + float64(over)/float64(max))
	}
	if tokens <= target {
		if target == min {
			return 1.0
		}
		return 1.0 - 0.2*float64(target-tokens)/float64(target-min)
	}
	if max == target {
		return 1.0
	}
	return 1.0 - 0.2*float64(tokens-target)/float64(max-target)
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return sum
}
