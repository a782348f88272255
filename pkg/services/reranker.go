package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/gateway"
	"github.com/codeready-toolchain/dpa/pkg/retriever"
)

// GatewayReranker implements retriever.Reranker using the Gateway's
// completion capability, per spec.md §4.E step 4 ("rerank via (C) using
// an LLM... when available"). Asks for one newline-separated score per
// candidate rather than a JSON array — a small, robustly-parseable LLM
// output contract (see pkg/qa's citation-marker convention for the same
// idea applied elsewhere).
type GatewayReranker struct {
	Client *gateway.Client
}

// NewGatewayReranker returns a GatewayReranker.
func NewGatewayReranker(client *gateway.Client) *GatewayReranker {
	return &GatewayReranker{Client: client}
}

const rerankSystemPrompt = `You score how relevant each numbered passage is to a query.
Reply with exactly one line per passage, in order, each containing only
a relevance score between 0.0 and 1.0. No other text.`

// Rerank scores each candidate's relevance to query. On any parse or
// call failure it returns an error; the caller (pkg/retriever) falls
// back to the pre-rerank fused order.
func (r *GatewayReranker) Rerank(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\n", query)
	for i, c := range candidates {
		fmt.Fprintf(&b, "Passage %d: %s\n", i+1, c)
	}

	messages := []gateway.Message{
		{Role: gateway.RoleSystem, Content: rerankSystemPrompt},
		{Role: gateway.RoleUser, Content: b.String()},
	}

	raw, err := r.Client.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("reranker: complete: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) != len(candidates) {
		return nil, fmt.Errorf("reranker: expected %d scores, got %d", len(candidates), len(lines))
	}

	scores := make([]float64, len(lines))
	for i, line := range lines {
		score, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return nil, fmt.Errorf("reranker: parse score %d (%q): %w", i, line, err)
		}
		scores[i] = score
	}
	return scores, nil
}

var _ retriever.Reranker = (*GatewayReranker)(nil)
