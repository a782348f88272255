package analyzer

import (
	"context"
	"fmt"
	"strings"
)

// integrate synthesizes findings into an executive summary, key-insights
// list, and concrete action items, per spec.md §4.F.
func (a *Analyzer) integrate(ctx context.Context, s *State) (Node, error) {
	text, err := a.Completer.Complete(ctx, []Message{
		{Role: "system", Content: integrateSystemPrompt},
		{Role: "user", Content: integratePrompt(s)},
	})
	if err != nil {
		return "", fmt.Errorf("integrate: %w", err)
	}

	synthesis, insights, actions := parseIntegration(text)
	s.Synthesis = synthesis
	s.KeyInsights = insights
	s.ActionItems = actions
	s.Confidence = computeConfidence(s)

	return NodeOutput, nil
}

const integrateSystemPrompt = "Synthesize the prior analysis into an executive summary, a list of key " +
	"insights, and a list of concrete action items. Output one SUMMARY: line, followed by " +
	"one or more INSIGHT: lines, followed by one or more ACTION: lines."

func integratePrompt(s *State) string {
	var b strings.Builder
	if summary, ok := s.Summaries[200]; ok {
		b.WriteString("200-word summary:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}
	if len(s.Entities) > 0 {
		fmt.Fprintf(&b, "%d entities and %d relations were extracted.\n", len(s.Entities), len(s.Relations))
	}
	if len(s.Claims) > 0 {
		fmt.Fprintf(&b, "%d claims analyzed, average evidence strength %.2f.\n", len(s.Claims), s.EvidenceStrength)
	}
	if len(s.Biases) > 0 {
		b.WriteString("Biases/fallacies found: ")
		b.WriteString(strings.Join(s.Biases, "; "))
		b.WriteString("\n")
	}
	return b.String()
}

func parseIntegration(text string) (synthesis string, insights, actions []string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			synthesis = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "INSIGHT:"):
			insights = append(insights, strings.TrimSpace(strings.TrimPrefix(line, "INSIGHT:")))
		case strings.HasPrefix(line, "ACTION:"):
			actions = append(actions, strings.TrimSpace(strings.TrimPrefix(line, "ACTION:")))
		}
	}
	return
}

// computeConfidence folds outline completeness and evidence strength (if
// critique ran) into a single [0,1] signal reported on the final report.
func computeConfidence(s *State) float64 {
	confidence := 0.5 + 0.3*outlineScore(s.Outline)
	if len(s.Claims) > 0 {
		confidence = 0.5*confidence + 0.5*s.EvidenceStrength
	}
	return clamp01(confidence)
}
