package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Runner drives Processing Pipeline runs: for each pipeline it creates
// (or resumes) a PipelineRecord, executes its requested Stages in fixed
// order, and maintains the status/progress/timeout invariants of spec.md
// §4.G. One Runner serves every pipeline; Interrupt finds the running
// stage's cancel function in the cancels map, keyed by pipeline_id.
type Runner struct {
	Store     Store
	Executor  StageExecutor
	Publisher Publisher
	Logger    *slog.Logger

	StageTimeout time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // pipeline_id -> current stage's cancel
}

// New returns a Runner. Publisher may be nil (no live subscribers, the
// polling read-path still works off Store). StageTimeout defaults to
// DefaultStageTimeout when zero.
func New(store Store, executor StageExecutor, publisher Publisher) *Runner {
	return &Runner{
		Store:        store,
		Executor:     executor,
		Publisher:    publisher,
		Logger:       slog.Default(),
		StageTimeout: DefaultStageTimeout,
		cancels:      make(map[string]context.CancelFunc),
	}
}

// Start creates a new pipeline for docID with the requested stages and
// begins executing it. Returns immediately after creation: Start runs
// the stage sequence in a goroutine of its own, detached from ctx's
// cancellation, which gives the non-blocking submission contract in
// spec.md §5.
func (r *Runner) Start(ctx context.Context, docID string, opts Options) (*PipelineRecord, error) {
	stages := opts.requestedStages()
	if len(stages) == 0 {
		return nil, errors.New("pipeline: no stages requested")
	}
	rec, err := r.Store.CreatePipeline(ctx, docID, stages)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	go r.run(runCtx, rec.ID, opts)

	return rec, nil
}

// Resume continues a pipeline from its last non-terminal stage. Per
// spec.md §4.G: "the runner inspects result for checkpoint markers and
// restarts the stage from the last completed unit" — that inspection
// happens inside StageExecutor; Resume's job is just to clear
// Interrupted and re-enter run().
func (r *Runner) Resume(ctx context.Context, pipelineID string, opts Options) error {
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return err
	}
	if rec.Completed {
		return fmt.Errorf("pipeline: %s already completed", pipelineID)
	}
	if err := r.Store.UpdatePipeline(ctx, pipelineID, func(p *PipelineRecord) {
		p.Interrupted = false
	}); err != nil {
		return err
	}

	runCtx := context.WithoutCancel(ctx)
	go r.run(runCtx, pipelineID, opts)
	return nil
}

// Interrupt sets interrupted=true and cancels the currently running
// stage's context; the stage's own cancellation-check honors it at its
// next safe point, per spec.md §4.G.
func (r *Runner) Interrupt(ctx context.Context, pipelineID string) error {
	if err := r.Store.UpdatePipeline(ctx, pipelineID, func(p *PipelineRecord) {
		p.Interrupted = true
	}); err != nil {
		return err
	}
	r.mu.Lock()
	cancel, ok := r.cancels[pipelineID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// run executes each requested stage in order, stopping at the first
// failure or interruption.
func (r *Runner) run(ctx context.Context, pipelineID string, opts Options) {
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		r.Logger.Error("pipeline: run: load failed", "pipeline_id", pipelineID, "error", err)
		return
	}

	for _, stage := range rec.Stages {
		if stage.Status.terminal() && stage.Status != StatusCancelled {
			continue // already completed/failed in a prior run
		}

		current, err := r.Store.GetPipeline(ctx, pipelineID)
		if err != nil {
			r.Logger.Error("pipeline: reload failed", "pipeline_id", pipelineID, "error", err)
			return
		}
		if current.Interrupted {
			r.finalizeInterrupted(ctx, pipelineID)
			return
		}

		if err := r.runStage(ctx, pipelineID, stage.Type, opts); err != nil {
			r.Logger.Warn("pipeline: stage failed", "pipeline_id", pipelineID, "stage", stage.Type, "error", err)
			return
		}

		final, err := r.Store.GetPipeline(ctx, pipelineID)
		if err == nil {
			if s := final.stage(stage.Type); s != nil && s.Status == StatusFailed {
				r.finalizeFailed(ctx, pipelineID)
				return
			}
			if final.Interrupted {
				r.finalizeInterrupted(ctx, pipelineID)
				return
			}
		}
	}

	r.finalizeCompleted(ctx, pipelineID)
}

// runStage transitions one stage pending → running → terminal exactly
// once, enforces the stage timeout, and reports progress monotonically.
func (r *Runner) runStage(ctx context.Context, pipelineID string, stageType StageType, opts Options) error {
	timeout := r.StageTimeout
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.mu.Lock()
	r.cancels[pipelineID] = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.cancels, pipelineID)
		r.mu.Unlock()
	}()

	if err := r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
		s.Status = StatusRunning
	}); err != nil {
		return err
	}
	r.publishStage(ctx, pipelineID, stageType)
	r.publishPipeline(ctx, pipelineID)

	highWater := 0
	progress := func(percent int, message string) {
		clamped := clampProgress(highWater, percent)
		highWater = clamped
		_ = r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
			s.Progress = clamped
			s.Message = message
		})
		r.publishStage(ctx, pipelineID, stageType)
		r.publishPipeline(ctx, pipelineID)
	}

	result, execErr := r.dispatch(stageCtx, stageType, pipelineID, opts, progress)

	switch {
	case stageCtx.Err() != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		return r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
			s.Status = StatusFailed
			s.ErrorCode = "timeout"
			s.ErrorMessage = fmt.Sprintf("stage exceeded %s timeout", timeout)
			s.CanResume = false
		})
	case stageCtx.Err() != nil && errors.Is(stageCtx.Err(), context.Canceled):
		return r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
			s.Status = StatusCancelled
			s.CanResume = s.CanInterrupt
			if result != nil {
				s.Result = result
			}
		})
	case execErr != nil:
		return r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
			s.Status = StatusFailed
			s.ErrorMessage = execErr.Error()
			s.CanResume = isTransient(execErr)
		})
	default:
		return r.Store.UpdateStage(ctx, pipelineID, stageType, func(s *StageRecord) {
			s.Status = StatusCompleted
			s.Progress = 100
			s.Result = result
		})
	}
}

func (r *Runner) dispatch(ctx context.Context, stageType StageType, pipelineID string, opts Options, progress ProgressFunc) (map[string]any, error) {
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	docID := rec.DocumentID

	switch stageType {
	case StageSummary:
		return r.Executor.ExecuteSummary(ctx, docID, progress)
	case StageIndex:
		return r.Executor.ExecuteIndex(ctx, docID, progress)
	case StageGraph:
		return r.Executor.ExecuteGraph(ctx, docID, progress)
	case StageAnalysis:
		return r.Executor.ExecuteAnalysis(ctx, docID, opts.AnalysisDepth, progress)
	default:
		return nil, fmt.Errorf("pipeline: unknown stage type %q", stageType)
	}
}

// clampProgress enforces spec.md §4.G's "progress is monotonically
// non-decreasing within a stage".
func clampProgress(highWater, reported int) int {
	if reported < highWater {
		return highWater
	}
	if reported > 100 {
		return 100
	}
	return reported
}

// isTransient decides can_resume for a failed stage, per spec.md §4.G:
// "can_resume remains true if the failure was transient and idempotent,
// false otherwise". Without a richer error taxonomy from the executor,
// only context errors are treated as non-transient (handled above);
// anything else is assumed retryable since stage executors are built to
// checkpoint progressively and resume from the last completed unit.
func isTransient(err error) bool {
	return err != nil
}

func (r *Runner) finalizeCompleted(ctx context.Context, pipelineID string) {
	_ = r.Store.UpdatePipeline(ctx, pipelineID, func(p *PipelineRecord) {
		p.Completed = true
		p.OverallProgress = 1.0
	})
	r.publishPipeline(ctx, pipelineID)
}

func (r *Runner) finalizeFailed(ctx context.Context, pipelineID string) {
	_ = r.Store.UpdatePipeline(ctx, pipelineID, func(p *PipelineRecord) {
		p.Completed = false
	})
	r.publishPipeline(ctx, pipelineID)
}

func (r *Runner) finalizeInterrupted(ctx context.Context, pipelineID string) {
	_ = r.Store.UpdatePipeline(ctx, pipelineID, func(p *PipelineRecord) {
		p.Interrupted = true
		p.CanResume = true
	})
	r.publishPipeline(ctx, pipelineID)
}

func (r *Runner) publishStage(ctx context.Context, pipelineID string, stageType StageType) {
	if r.Publisher == nil {
		return
	}
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return
	}
	if s := rec.stage(stageType); s != nil {
		r.Publisher.PublishStageEvent(ctx, pipelineID, *s)
	}
}

func (r *Runner) publishPipeline(ctx context.Context, pipelineID string) {
	if r.Publisher == nil {
		return
	}
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return
	}
	rec.OverallProgress = OverallProgress(rec.Stages)
	r.Publisher.PublishPipelineEvent(ctx, pipelineID, *rec)
}

// OverallProgress computes spec.md §4.G's "weighted mean of stage
// progresses, weights fixed per stage type (INDEX heaviest)".
func OverallProgress(stages []StageRecord) float64 {
	var weightSum, progressSum float64
	for _, s := range stages {
		w := stageWeights[s.Type]
		weightSum += w
		progressSum += w * float64(s.Progress) / 100.0
	}
	if weightSum == 0 {
		return 0
	}
	return progressSum / weightSum
}

// Snapshot computes a ProgressSnapshot-equivalent read directly from the
// Store, for the polling fallback path (spec.md §4.H's get_progress).
func (r *Runner) Snapshot(ctx context.Context, pipelineID string) (*PipelineRecord, error) {
	rec, err := r.Store.GetPipeline(ctx, pipelineID)
	if err != nil {
		return nil, err
	}
	rec.OverallProgress = OverallProgress(rec.Stages)
	return rec, nil
}
