package retriever

import (
	"sort"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

// sourceHit is one candidate from a single source, before fusion.
type sourceHit struct {
	ChunkID string
	Text    string
	Score   float64
	Source  string // vector|keyword|graph
}

// sourcePriority breaks score ties: vector > keyword > graph, per
// spec.md §4.E step 3.
var sourcePriority = map[string]int{"fused": 4, "vector": 3, "keyword": 2, "graph": 1}

// normalizeMinMax rescales a source's scores to [0,1]. A source with a
// single hit (or all-equal scores) maps to 1.0 rather than dividing by
// zero, since "better than nothing" is the accurate read of one result.
func normalizeMinMax(hits []sourceHit) {
	if len(hits) == 0 {
		return
	}
	min, max := hits[0].Score, hits[0].Score
	for _, h := range hits {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}
	spread := max - min
	for i := range hits {
		if spread == 0 {
			hits[i].Score = 1.0
		} else {
			hits[i].Score = (hits[i].Score - min) / spread
		}
	}
}

// weights holds the three source weights, renormalized when a source is
// unavailable (spec.md §4.E "Degrades").
type weights struct {
	Vector, Keyword, Graph float64
}

// renormalize redistributes the weight of failed sources proportionally
// among the surviving ones.
func renormalize(w weights, vectorOK, keywordOK, graphOK bool) weights {
	out := weights{}
	var survivingTotal float64
	if vectorOK {
		survivingTotal += w.Vector
	}
	if keywordOK {
		survivingTotal += w.Keyword
	}
	if graphOK {
		survivingTotal += w.Graph
	}
	if survivingTotal == 0 {
		return out
	}
	if vectorOK {
		out.Vector = w.Vector / survivingTotal
	}
	if keywordOK {
		out.Keyword = w.Keyword / survivingTotal
	}
	if graphOK {
		out.Graph = w.Graph / survivingTotal
	}
	return out
}

// fuse combines normalized per-source hits into one ranked, deduplicated
// list: fused score = Σ weight_i · score_i, summed across sources a chunk
// appeared in, stable-sorted descending with source-priority tie-break.
func fuse(vectorHits, keywordHits, graphHits []sourceHit, w weights) []models.RetrievedChunk {
	type accum struct {
		text       string
		score      float64
		bestSource string
	}
	byChunk := make(map[string]*accum)

	apply := func(hits []sourceHit, weight float64) {
		for _, h := range hits {
			a, ok := byChunk[h.ChunkID]
			if !ok {
				a = &accum{text: h.Text, bestSource: h.Source}
				byChunk[h.ChunkID] = a
			}
			a.score += weight * h.Score
			if sourcePriority[h.Source] > sourcePriority[a.bestSource] {
				a.bestSource = h.Source
			}
			if a.text == "" {
				a.text = h.Text
			}
		}
	}
	apply(vectorHits, w.Vector)
	apply(keywordHits, w.Keyword)
	apply(graphHits, w.Graph)

	out := make([]models.RetrievedChunk, 0, len(byChunk))
	for chunkID, a := range byChunk {
		tag := a.bestSource
		if sourceCount(chunkID, vectorHits, keywordHits, graphHits) > 1 {
			tag = "fused"
		}
		out = append(out, models.RetrievedChunk{
			ChunkID:   chunkID,
			Text:      a.text,
			Score:     a.score,
			SourceTag: tag,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return sourcePriority[out[i].SourceTag] > sourcePriority[out[j].SourceTag]
	})
	return out
}

func sourceCount(chunkID string, sources ...[]sourceHit) int {
	count := 0
	for _, hits := range sources {
		for _, h := range hits {
			if h.ChunkID == chunkID {
				count++
				break
			}
		}
	}
	return count
}
