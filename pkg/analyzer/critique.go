package analyzer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// critique analyzes evidence chains, cross-references, and critical-
// thinking signals. Only reached when depth >= deep (explore routes
// directly to integrate otherwise), per spec.md §4.F.
func (a *Analyzer) critique(ctx context.Context, s *State) (Node, error) {
	text, err := a.Completer.Complete(ctx, []Message{
		{Role: "system", Content: critiqueSystemPrompt},
		{Role: "user", Content: documentExcerpt(s)},
	})
	if err != nil {
		return "", fmt.Errorf("critique: %w", err)
	}

	claims, biases, assumptions, alternatives := parseCritique(text)
	s.Claims = claims
	s.Biases = biases
	s.Assumptions = assumptions
	s.AlternativeViews = alternatives
	s.EvidenceStrength = averageEvidenceStrength(claims)

	return NodeIntegrate, nil
}

const critiqueSystemPrompt = "Analyze this document's evidence chains and critical-thinking signals. " +
	"For each significant claim, output CLAIM:<strength 0-1>:<claim text>:<supporting text or NONE>. " +
	"List logical fallacies or unsupported leaps as BIAS:<description>. " +
	"List unstated assumptions as ASSUMPTION:<description>. " +
	"List alternative viewpoints not addressed as ALTERNATIVE:<description>."

func parseCritique(text string) (claims []Claim, biases, assumptions, alternatives []string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "CLAIM:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "CLAIM:"), ":", 3)
			if len(parts) != 3 {
				continue
			}
			strength, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			if err != nil {
				strength = 0.5
			}
			support := strings.TrimSpace(parts[2])
			if support == "NONE" {
				support = ""
			}
			claims = append(claims, Claim{
				Text:             strings.TrimSpace(parts[1]),
				Support:          support,
				EvidenceStrength: clamp01(strength),
			})
		case strings.HasPrefix(line, "BIAS:"):
			biases = append(biases, strings.TrimSpace(strings.TrimPrefix(line, "BIAS:")))
		case strings.HasPrefix(line, "ASSUMPTION:"):
			assumptions = append(assumptions, strings.TrimSpace(strings.TrimPrefix(line, "ASSUMPTION:")))
		case strings.HasPrefix(line, "ALTERNATIVE:"):
			alternatives = append(alternatives, strings.TrimSpace(strings.TrimPrefix(line, "ALTERNATIVE:")))
		}
	}
	return
}

func averageEvidenceStrength(claims []Claim) float64 {
	if len(claims) == 0 {
		return 0
	}
	var sum float64
	for _, c := range claims {
		sum += c.EvidenceStrength
	}
	return sum / float64(len(claims))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
