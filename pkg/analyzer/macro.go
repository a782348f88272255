package analyzer

import (
	"context"
	"fmt"
	"strings"
)

// macroWordLevels are the progressive summary lengths, per spec.md §4.F
// ("50/200/500/1000/2000 words, higher levels may reference lower").
var macroWordLevels = []int{50, 200, 500, 1000, 2000}

// macro generates progressive summaries and the four-dimensional outline,
// then stops at basic depth.
func (a *Analyzer) macro(ctx context.Context, s *State) (Node, error) {
	s.Summaries = make(map[int]string, len(macroWordLevels))

	var previous string
	for _, words := range macroWordLevels {
		prompt := summaryPrompt(s, words, previous)
		text, err := a.Completer.Complete(ctx, []Message{
			{Role: "system", Content: "You summarize documents at a fixed target length, referencing the prior shorter summary for continuity."},
			{Role: "user", Content: prompt},
		})
		if err != nil {
			return "", fmt.Errorf("macro: summarize at %d words: %w", words, err)
		}
		s.Summaries[words] = text
		previous = text
	}

	outline, err := a.buildOutline(ctx, s)
	if err != nil {
		return "", fmt.Errorf("macro: outline: %w", err)
	}
	s.Outline = outline

	if outlineScore(outline) < outlineScoreThreshold && !s.prepareRetried {
		s.prepareRetried = true
		return NodePrepare, nil
	}

	if s.Depth == DepthBasic {
		return NodeOutput, nil
	}
	return NodeExplore, nil
}

const outlineScoreThreshold = 0.25

// outlineScore is the fraction of the outline's four dimensions that
// produced at least one entry — a cheap structural-completeness signal,
// not a semantic quality judgment.
func outlineScore(o Outline) float64 {
	dims := [][]string{o.Logical, o.Topical, o.Temporal, o.Causal}
	filled := 0
	for _, d := range dims {
		if len(d) > 0 {
			filled++
		}
	}
	return float64(filled) / float64(len(dims))
}

func summaryPrompt(s *State, words int, previous string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Produce a summary of approximately %d words for the following document.", words)
	if previous != "" {
		b.WriteString(" Build on this shorter summary, adding detail rather than contradicting it:\n")
		b.WriteString(previous)
		b.WriteString("\n\n")
	}
	b.WriteString("\nDocument:\n")
	b.WriteString(documentExcerpt(s))
	return b.String()
}

func (a *Analyzer) buildOutline(ctx context.Context, s *State) (Outline, error) {
	text, err := a.Completer.Complete(ctx, []Message{
		{Role: "system", Content: "Extract a four-dimensional outline — logical structure, topical clusters, temporal sequence, and causal chains — as four labeled lists, one item per line, prefixed LOGICAL:, TOPICAL:, TEMPORAL:, or CAUSAL:."},
		{Role: "user", Content: documentExcerpt(s)},
	})
	if err != nil {
		return Outline{}, err
	}
	return parseOutline(text), nil
}

func parseOutline(text string) Outline {
	var o Outline
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "LOGICAL:"):
			o.Logical = append(o.Logical, strings.TrimSpace(strings.TrimPrefix(line, "LOGICAL:")))
		case strings.HasPrefix(line, "TOPICAL:"):
			o.Topical = append(o.Topical, strings.TrimSpace(strings.TrimPrefix(line, "TOPICAL:")))
		case strings.HasPrefix(line, "TEMPORAL:"):
			o.Temporal = append(o.Temporal, strings.TrimSpace(strings.TrimPrefix(line, "TEMPORAL:")))
		case strings.HasPrefix(line, "CAUSAL:"):
			o.Causal = append(o.Causal, strings.TrimSpace(strings.TrimPrefix(line, "CAUSAL:")))
		}
	}
	return o
}

// documentExcerpt bounds the prompt size by joining chunk text up to a
// fixed budget rather than sending the whole document to every call.
const maxExcerptChunks = 40

func documentExcerpt(s *State) string {
	var b strings.Builder
	limit := len(s.Chunks)
	if limit > maxExcerptChunks {
		limit = maxExcerptChunks
	}
	for i := 0; i < limit; i++ {
		b.WriteString(s.Chunks[i].Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
