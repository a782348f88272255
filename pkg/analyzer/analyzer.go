package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// maxStageRetries is spec.md §4.F's "retried up to N=2 with backoff" for
// stages with a transient cause.
const maxStageRetries = 2

var (
	retryBackoffMin = 250 * time.Millisecond
	retryBackoffMax = 750 * time.Millisecond
)

// nodeFunc is one pure node in the flattened state machine: it reads and
// mutates State and returns the next Node to dispatch to.
type nodeFunc func(ctx context.Context, s *State) (Node, error)

// Analyzer drives the Advanced Document Analyzer's state machine. Every
// dependency is a small capability port (Design Note, spec.md §9), so a
// unit test can run the full state machine against in-memory fakes.
type Analyzer struct {
	Chunker        Chunker
	Completer      Completer
	GraphWriter    GraphWriter
	Checkpointer   Checkpointer
	ArtifactWriter ArtifactWriter
	Logger         *slog.Logger

	nodes map[Node]nodeFunc
}

// New wires an Analyzer. Chunker and Completer are required. GraphWriter,
// Checkpointer and ArtifactWriter may be nil; explore/output and the
// checkpoint step then skip their persistence side effect rather than
// failing the run — a failure belongs to the LLM calls, not the storage
// layer.
func New(chunkerPort Chunker, completer Completer, graphWriter GraphWriter, checkpointer Checkpointer, artifactWriter ArtifactWriter) *Analyzer {
	a := &Analyzer{
		Chunker:        chunkerPort,
		Completer:      completer,
		GraphWriter:    graphWriter,
		Checkpointer:   checkpointer,
		ArtifactWriter: artifactWriter,
		Logger:         slog.Default(),
	}
	a.nodes = map[Node]nodeFunc{
		NodePrepare:   a.prepare,
		NodeMacro:     a.macro,
		NodeExplore:   a.explore,
		NodeCritique:  a.critique,
		NodeIntegrate: a.integrate,
		NodeOutput:    a.output,
	}
	return a
}

// Run drives State from its Current node through to NodeDone or
// NodeFailed, checkpointing after every transition. Call with a fresh
// State (Current == "" defaults to NodePrepare) to start a run, or with a
// State loaded via Checkpointer.LoadCheckpoint to resume one.
func (a *Analyzer) Run(ctx context.Context, s *State) (*State, error) {
	if s.Current == "" {
		s.Current = NodePrepare
	}

	for s.Current != NodeDone && s.Current != NodeFailed {
		node := a.nodes[s.Current]
		if node == nil {
			return s, fmt.Errorf("analyzer: unknown node %q", s.Current)
		}

		start := time.Now()
		next, err := a.runWithRetry(ctx, node, s)
		s.Durations = append(s.Durations, StageDuration{Node: s.Current, Duration: time.Since(start)})

		if err != nil {
			s.Errors = append(s.Errors, err.Error())
			s.Current = NodeFailed
			s.FailReason = err.Error()
			a.checkpoint(ctx, s)
			return s, nil
		}

		s.Current = next
		a.checkpoint(ctx, s)
	}

	return s, nil
}

// runWithRetry retries a node up to maxStageRetries times with jittered
// backoff, per spec.md §4.F's failure semantics. Context cancellation is
// never retried.
func (a *Analyzer) runWithRetry(ctx context.Context, node nodeFunc, s *State) (Node, error) {
	var lastErr error
	for attempt := 0; attempt <= maxStageRetries; attempt++ {
		next, err := node(ctx, s)
		if err == nil {
			return next, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if attempt == maxStageRetries {
			break
		}
		a.Logger.Warn("analyzer: stage failed, retrying", "stage", s.Current, "attempt", attempt+1, "error", err)
		if waitErr := sleepWithJitter(ctx); waitErr != nil {
			return "", waitErr
		}
	}
	return "", lastErr
}

func sleepWithJitter(ctx context.Context) error {
	span := retryBackoffMax - retryBackoffMin
	delay := retryBackoffMin
	if span > 0 {
		delay += time.Duration(rand.Int64N(int64(span)))
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *Analyzer) checkpoint(ctx context.Context, s *State) {
	if a.Checkpointer == nil {
		return
	}
	if err := a.Checkpointer.SaveCheckpoint(ctx, s); err != nil {
		a.Logger.Warn("analyzer: checkpoint failed", "doc_id", s.DocID, "run_id", s.RunID, "error", err)
	}
}
