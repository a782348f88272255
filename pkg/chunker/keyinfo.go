package chunker

import (
	"regexp"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// definitionPattern matches sentences of the shape "X is/are/means/refers
// to/denotes Y" that typically carry a definition.
var definitionPattern = regexp.MustCompile(`(?i)^[A-Z][\w\s/-]{2,40}\s+(is|are|means|refers to|denotes)\s`)

// conclusionMarkers flags sentences that summarize or conclude a passage.
var conclusionMarkers = []string{
	"in summary", "in conclusion", "therefore", "thus,", "overall,", "to summarize",
}

// numericFactPattern matches sentences carrying a standalone number, percent,
// or currency figure likely to be a factual claim worth surfacing directly.
var numericFactPattern = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent|million|billion|thousand)?`)

// extractKeyInfo scans each chunk's sentences for definitions, numeric
// facts, and concluding statements, and emits a key_info chunk per hit with
// Metadata["source_chunk_hash"] pointing back at its origin, per spec.md
// §4.B step 6. Key-info chunks get a quality_score bonus in scoreQuality.
func extractKeyInfo(chunks []Chunk) []Chunk {
	var extra []Chunk
	for _, c := range chunks {
		if c.ChunkType == TypeCode || c.ChunkType == TypeTable {
			continue
		}
		for _, s := range textutil.SplitSentences(c.Text) {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if isKeyInfoSentence(s) {
				extra = append(extra, Chunk{
					DocID:       c.DocID,
					StartChar:   c.StartChar,
					EndChar:     c.EndChar,
					Text:        s,
					ContentHash: contentHash(s),
					CharCount:   len(s),
					ChunkType:   TypeKeyInfo,
					Strategy:    c.Strategy,
					Metadata:    map[string]any{"source_chunk_hash": c.ContentHash},
				})
			}
		}
	}
	return extra
}

func isKeyInfoSentence(s string) bool {
	if definitionPattern.MatchString(s) {
		return true
	}
	lower := strings.ToLower(s)
	for _, m := range conclusionMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return numericFactPattern.MatchString(s) && len(strings.Fields(s)) <= 40
}
