package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/codeready-toolchain/dpa/pkg/chunker"
	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// prepare loads the document text, detects language, runs an optional
// skim, and produces the initial chunk set via (B). Per spec.md §4.F's
// conditional routing: low quality at depth=basic skips straight to
// output (explore/critique add nothing a basic run will use).
func (a *Analyzer) prepare(ctx context.Context, s *State) (Node, error) {
	if strings.TrimSpace(s.Text) == "" {
		return NodeFailed, fmt.Errorf("prepare: document has no extractable text")
	}

	_ = textutil.DetectLanguage(s.Text) // carried for future locale-aware prompting; not yet part of State

	cfg := chunker.DefaultConfig()
	if s.prepareRetried {
		// spec.md §4.F: "loop prepare with a different chunker config, at
		// most once" — widen the target size so a second pass produces
		// fewer, larger chunks if the first outline scored poorly.
		cfg.TargetChunkSize = 1500
		cfg.UseSemantic = false
	}

	outcome, err := a.Chunker.Chunk(ctx, s.DocID, s.Text, cfg)
	if err != nil {
		return NodeFailed, fmt.Errorf("prepare: chunk: %w", err)
	}
	if outcome.Warning != "" {
		s.Errors = append(s.Errors, "prepare: "+outcome.Warning)
	}

	s.Chunks = make([]ChunkView, len(outcome.Chunks))
	for i, c := range outcome.Chunks {
		s.Chunks[i] = ChunkView{
			ContentHash: c.ContentHash,
			Text:        c.Text,
			StartChar:   c.StartChar,
			EndChar:     c.EndChar,
		}
	}

	if lowQuality(outcome) && s.Depth == DepthBasic {
		s.Confidence = 0.4
		return NodeOutput, nil
	}

	return NodeMacro, nil
}

// lowQuality reports whether the chunk set is thin enough that deeper
// analysis would be spending budget on noise — e.g. a near-empty
// document that fell back to a single structural chunk.
func lowQuality(outcome chunker.ChunkingOutcome) bool {
	return outcome.Strategy == chunker.StrategyFallback && len(outcome.Chunks) <= 1
}
