package chunker

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/dpa/pkg/textutil"
)

// maxSectionWorkers bounds the concurrent section-chunking fan-out so a
// document with thousands of tiny sections (e.g. a huge bullet list) can't
// spawn unbounded goroutines.
const maxSectionWorkers = 8

// Chunker implements the Hybrid Chunker's full algorithm (spec.md §4.B):
// structural pre-pass, sentence-packed primary segmentation, semantic
// boundary refinement, context-window annotation, sliding-window
// generation, key-info extraction, semantic dedup, and quality scoring.
// The Embedder port is optional: a nil Embedder (or an Embed call that
// fails) degrades the outcome to Strategy=fallback without erroring.
type Chunker struct {
	Embedder    Embedder
	TokenFamily textutil.ModelFamily
}

// New returns a Chunker. embedder may be nil to force structural-only
// chunking (e.g. an offline pipeline run with no reachable gateway).
func New(embedder Embedder, family textutil.ModelFamily) *Chunker {
	return &Chunker{Embedder: embedder, TokenFamily: family}
}

// Chunk runs the full pipeline over one document's text and returns a
// ChunkingOutcome. Fails with ChunkingError when text is empty or cfg is
// invalid; degrades (not fails) to Strategy=fallback when semantic steps
// are unavailable, per the Design Note in spec.md §9.
func (ch *Chunker) Chunk(ctx context.Context, docID, text string, cfg Config) (ChunkingOutcome, error) {
	if strings.TrimSpace(text) == "" {
		return ChunkingOutcome{}, &ChunkingError{Reason: "empty text", Err: ErrEmptyText}
	}
	if err := cfg.Validate(); err != nil {
		return ChunkingOutcome{}, err
	}

	strategy := StrategyPrimary
	var warning string

	// Step 1: structural pre-pass.
	var sections []section
	if cfg.UseStructure {
		sections = buildSections(text)
	} else {
		sections = []section{{Start: 0, End: len(text), Text: text}}
	}

	// Step 2: sentence-packed primary segmentation, per section. Sections
	// are independent, so pack them concurrently with a bounded worker
	// pool; results are reassembled in section order before continuing.
	perSection := make([][]Chunk, len(sections))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxSectionWorkers)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			perSection[i] = primarySegment(sec, cfg, ch.TokenFamily)
			return nil
		})
	}
	_ = g.Wait() // primarySegment never errors; Wait only awaits completion

	var chunks []Chunk
	for _, cs := range perSection {
		chunks = append(chunks, cs...)
	}
	for i := range chunks {
		chunks[i].DocID = docID
	}

	// Step 3: semantic boundary refinement.
	if cfg.UseSemantic {
		refined, ok := refineSemantics(ctx, ch.Embedder, chunks, cfg.DedupSemanticThreshold-0.07)
		if !ok {
			strategy = StrategyFallback
			warning = "semantic refinement unavailable, used structural chunking only"
		} else {
			chunks = refined
		}
	}

	// Step 4: context window annotation.
	if cfg.UseContextWindow {
		applyContextWindows(text, chunks, cfg.Overlap, ch.TokenFamily)
	}

	// Step 5: sliding window chunk generation (additive, parallel set).
	if cfg.UseSlidingWindow {
		chunks = append(chunks, slidingWindowChunks(docID, text, cfg, ch.TokenFamily)...)
	}

	// Step 6: key info extraction (additive).
	if cfg.ExtractKeyInfo {
		extra := extractKeyInfo(chunks)
		for i := range extra {
			extra[i].DocID = docID
		}
		chunks = append(chunks, extra...)
	}

	// Step 7: semantic dedup over the full candidate set.
	if cfg.UseSemantic && cfg.DedupSemanticThreshold > 0 {
		deduped, ok := deduplicateSemantic(ctx, ch.Embedder, chunks, cfg.DedupSemanticThreshold, cfg.TargetChunkSize)
		if !ok {
			strategy = StrategyFallback
			if warning == "" {
				warning = "semantic dedup unavailable, skipped"
			}
		} else {
			chunks = deduped
		}
	}

	// Step 8: quality scoring.
	scoreQuality(chunks, cfg, ch.TokenFamily)

	for i := range chunks {
		if chunks[i].DocID == "" {
			chunks[i].DocID = docID
		}
	}

	return ChunkingOutcome{Chunks: chunks, Strategy: strategy, Warning: warning}, nil
}
