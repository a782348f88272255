package retriever

import (
	"math"
	"sort"
	"strings"
)

// bm25K1 and bm25B are the standard Okapi BM25 tuning constants.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// BM25Document is one unit of the keyword corpus: a chunk's ID and text.
type BM25Document struct {
	ChunkID string
	Text    string
}

// BM25Index is a small in-process inverted index — no ecosystem library
// in the example pack implements BM25 as an importable dependency, so
// this is hand-rolled per DESIGN.md's standard-library justification.
type BM25Index struct {
	docs       []BM25Document
	docTerms   [][]string
	termFreq   []map[string]int // per-doc term counts
	docFreq    map[string]int   // term -> number of docs containing it
	avgDocLen  float64
	totalTerms int
}

// BuildBM25Index tokenizes and indexes the given corpus.
func BuildBM25Index(docs []BM25Document) *BM25Index {
	idx := &BM25Index{
		docs:     docs,
		docTerms: make([][]string, len(docs)),
		termFreq: make([]map[string]int, len(docs)),
		docFreq:  make(map[string]int),
	}

	for i, d := range docs {
		terms := tokenize(d.Text)
		idx.docTerms[i] = terms
		idx.totalTerms += len(terms)

		counts := make(map[string]int, len(terms))
		for _, t := range terms {
			counts[t]++
		}
		idx.termFreq[i] = counts
		for t := range counts {
			idx.docFreq[t]++
		}
	}

	if len(docs) > 0 {
		idx.avgDocLen = float64(idx.totalTerms) / float64(len(docs))
	}
	return idx
}

// KeywordHit is one BM25 search result.
type KeywordHit struct {
	ChunkID string
	Score   float64
}

// Search scores every indexed document against the query's terms and
// returns the top `limit` by BM25 score, descending.
func (idx *BM25Index) Search(query string, limit int) []KeywordHit {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 || len(idx.docs) == 0 {
		return nil
	}

	n := float64(len(idx.docs))
	hits := make([]KeywordHit, 0, len(idx.docs))

	for i, d := range idx.docs {
		var score float64
		docLen := float64(len(idx.docTerms[i]))
		for _, qt := range queryTerms {
			tf := float64(idx.termFreq[i][qt])
			if tf == 0 {
				continue
			}
			df := float64(idx.docFreq[qt])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			numer := tf * (bm25K1 + 1)
			denom := tf + bm25K1*(1-bm25B+bm25B*docLen/maxFloat(idx.avgDocLen, 1))
			score += idf * numer / denom
		}
		if score > 0 {
			hits = append(hits, KeywordHit{ChunkID: d.ChunkID, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
