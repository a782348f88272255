package qa

import (
	"regexp"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

// citationMarker matches an inline "[chunk:<id>]" reference the prompt
// instructs the model to append after a sentence it drew on. Small,
// single-purpose regex-based text transform.
var citationMarker = regexp.MustCompile(`\[chunk:([^\]\s]+)\]`)

// sentenceSplit is a deliberately simple sentence boundary — good
// enough for the coverage check, not a full NLP splitter.
var sentenceSplit = regexp.MustCompile(`(?:[^.!?]|\.\.\.)+[.!?]*`)

// extractCitations pulls every "[chunk:<id>]" marker out of answer and
// maps it back to its retrieval score, producing the Citations list of
// AnswerPacket. Unknown chunk ids (hallucinated markers) are dropped.
func extractCitations(answer string, retrieved []models.RetrievedChunk) []models.Citation {
	scoreByChunk := make(map[string]float64, len(retrieved))
	for _, c := range retrieved {
		scoreByChunk[c.ChunkID] = c.Score
	}

	seen := make(map[string]bool)
	var out []models.Citation
	for _, m := range citationMarker.FindAllStringSubmatch(answer, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		score, known := scoreByChunk[id]
		if !known {
			continue
		}
		seen[id] = true
		out = append(out, models.Citation{ChunkID: id, Score: score})
	}
	return out
}

// stripCitationMarkers removes the inline markers from the text shown
// to the user, leaving only the prose.
func stripCitationMarkers(answer string) string {
	cleaned := citationMarker.ReplaceAllString(answer, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// sentences splits text into its component sentences for the coverage
// check, discarding blank/whitespace-only fragments.
func sentences(text string) []string {
	var out []string
	for _, m := range sentenceSplit.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// hasUncitedSentence reports whether any non-trivial sentence of answer
// lacks an inline citation marker — the strict_citations=true check of
// spec.md §4.I.
func hasUncitedSentence(answer string) bool {
	for _, s := range sentences(answer) {
		if !citationMarker.MatchString(s) {
			return true
		}
	}
	return false
}
