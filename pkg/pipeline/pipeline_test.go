package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	mu       sync.Mutex
	calls    []StageType
	block    chan struct{} // if non-nil, ExecuteIndex waits on this (or ctx.Done)
	failType StageType
}

func (f *fakeExecutor) record(t StageType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, t)
}

func (f *fakeExecutor) ExecuteSummary(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error) {
	f.record(StageSummary)
	if f.failType == StageSummary {
		return nil, errors.New("summary failed")
	}
	progress(50, "half done")
	progress(30, "should not regress") // out-of-order report must be clamped
	progress(100, "done")
	return map[string]any{"ok": true}, nil
}

func (f *fakeExecutor) ExecuteIndex(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error) {
	f.record(StageIndex)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return map[string]any{"checkpoint": "partial"}, ctx.Err()
		}
	}
	if f.failType == StageIndex {
		return nil, errors.New("index failed")
	}
	progress(100, "indexed")
	return map[string]any{"chunks": 3}, nil
}

func (f *fakeExecutor) ExecuteGraph(ctx context.Context, docID string, progress ProgressFunc) (map[string]any, error) {
	f.record(StageGraph)
	progress(100, "graphed")
	return nil, nil
}

func (f *fakeExecutor) ExecuteAnalysis(ctx context.Context, docID, depth string, progress ProgressFunc) (map[string]any, error) {
	f.record(StageAnalysis)
	progress(100, "analyzed")
	return map[string]any{"depth": depth}, nil
}

func waitForTerminal(t *testing.T, store Store, pipelineID string, timeout time.Duration) *PipelineRecord {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		rec, err := store.GetPipeline(context.Background(), pipelineID)
		require.NoError(t, err)
		// Interrupted alone is set before the running stage is cancelled;
		// the run is over once finalizeInterrupted has also set CanResume.
		if rec.Completed || (rec.Interrupted && rec.CanResume) {
			return rec
		}
		// A failed stage ends the run; the stages after it stay pending.
		for _, s := range rec.Stages {
			if s.Status == StatusFailed {
				return rec
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for pipeline to reach a terminal state")
	return nil
}

func TestRunner_RunsRequestedStagesInOrderAndCompletes(t *testing.T) {
	store := NewMockStore()
	exec := &fakeExecutor{}
	r := New(store, exec, nil)

	rec, err := r.Start(context.Background(), "doc1", Options{Summary: true, Index: true, Analysis: true, AnalysisDepth: "standard"})
	require.NoError(t, err)

	final := waitForTerminal(t, store, rec.ID, 2*time.Second)
	assert.True(t, final.Completed)
	assert.Equal(t, []StageType{StageSummary, StageIndex, StageAnalysis}, exec.calls)

	for _, s := range final.Stages {
		assert.Equal(t, StatusCompleted, s.Status)
		assert.Equal(t, 100, s.Progress)
	}
}

// progressRecorder is a Publisher that keeps every stage progress value
// it is sent, in order.
type progressRecorder struct {
	mu       sync.Mutex
	progress []int
}

func (p *progressRecorder) PublishStageEvent(ctx context.Context, pipelineID string, s StageRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = append(p.progress, s.Progress)
}

func (p *progressRecorder) PublishPipelineEvent(ctx context.Context, pipelineID string, snapshot PipelineRecord) {
}

func TestRunner_ProgressNeverRegressesWithinAStage(t *testing.T) {
	store := NewMockStore()
	exec := &fakeExecutor{}
	recorder := &progressRecorder{}
	r := New(store, exec, recorder)

	rec, err := r.Start(context.Background(), "doc2", Options{Summary: true})
	require.NoError(t, err)
	waitForTerminal(t, store, rec.ID, 2*time.Second)

	recorder.mu.Lock()
	reported := append([]int(nil), recorder.progress...)
	recorder.mu.Unlock()
	require.NotEmpty(t, reported)
	for i := 1; i < len(reported); i++ {
		assert.GreaterOrEqual(t, reported[i], reported[i-1], "published progress went backwards: %v", reported)
	}

	final, err := store.GetPipeline(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, final.stage(StageSummary).Progress)
}

func TestRunner_FailedStageMarksPipelineNotCompletedAndStopsFurtherStages(t *testing.T) {
	store := NewMockStore()
	exec := &fakeExecutor{failType: StageIndex}
	r := New(store, exec, nil)

	rec, err := r.Start(context.Background(), "doc3", Options{Summary: true, Index: true, Graph: true})
	require.NoError(t, err)
	final := waitForTerminal(t, store, rec.ID, 2*time.Second)

	assert.False(t, final.Completed)
	assert.Equal(t, StatusCompleted, final.stage(StageSummary).Status)
	assert.Equal(t, StatusFailed, final.stage(StageIndex).Status)
	assert.Equal(t, StatusPending, final.stage(StageGraph).Status, "graph must never start once index fails")
}

func TestRunner_InterruptCancelsRunningStageAndMarksResumable(t *testing.T) {
	store := NewMockStore()
	exec := &fakeExecutor{block: make(chan struct{})}
	r := New(store, exec, nil)

	rec, err := r.Start(context.Background(), "doc4", Options{Summary: true, Index: true})
	require.NoError(t, err)

	// Wait until the index stage is actually running before interrupting.
	require.Eventually(t, func() bool {
		cur, _ := store.GetPipeline(context.Background(), rec.ID)
		return cur.stage(StageIndex).Status == StatusRunning
	}, time.Second, 2*time.Millisecond)

	require.NoError(t, r.Interrupt(context.Background(), rec.ID))

	final := waitForTerminal(t, store, rec.ID, 2*time.Second)
	assert.True(t, final.Interrupted)
	assert.True(t, final.CanResume)
	assert.Equal(t, StatusCancelled, final.stage(StageIndex).Status)
}

func TestRunner_StageTimeoutMarksFailedNeverLeavesRunning(t *testing.T) {
	store := NewMockStore()
	exec := &fakeExecutor{block: make(chan struct{})} // never closed: forces timeout
	r := New(store, exec, nil)
	r.StageTimeout = 20 * time.Millisecond

	rec, err := r.Start(context.Background(), "doc5", Options{Index: true})
	require.NoError(t, err)

	final := waitForTerminal(t, store, rec.ID, 2*time.Second)
	assert.Equal(t, StatusFailed, final.stage(StageIndex).Status)
	assert.Equal(t, "timeout", final.stage(StageIndex).ErrorCode)
	assert.NotEqual(t, StatusRunning, final.stage(StageIndex).Status)
}

func TestOverallProgress_WeightsIndexHeaviest(t *testing.T) {
	stages := []StageRecord{
		{Type: StageSummary, Progress: 100},
		{Type: StageIndex, Progress: 0},
	}
	// weight(summary)=1, weight(index)=4 -> overall = (1*1.0 + 4*0.0) / 5 = 0.2
	assert.InDelta(t, 0.2, OverallProgress(stages), 1e-9)
}
