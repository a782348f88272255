package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/pipeline"
)

type fakePersister struct {
	mu     sync.Mutex
	events []Event
	snap   models.ProgressSnapshot
}

func (f *fakePersister) RecordEvent(ctx context.Context, pipelineID string, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePersister) Snapshot(ctx context.Context, pipelineID string) (models.ProgressSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, nil
}

func (f *fakePersister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func recvWithTimeout(t *testing.T, ch <-chan Event, d time.Duration) (Event, bool) {
	t.Helper()
	select {
	case e, ok := <-ch:
		return e, ok
	case <-time.After(d):
		return Event{}, false
	}
}

func TestBus_SubscribeSeedsInitialSnapshot(t *testing.T) {
	persister := &fakePersister{snap: models.ProgressSnapshot{PipelineID: "p1", OverallProgress: 0.3}}
	bus := NewBus(persister)

	ch, unsubscribe, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	defer unsubscribe()

	ev, ok := recvWithTimeout(t, ch, time.Second)
	require.True(t, ok)
	assert.Equal(t, EventPipeline, ev.Kind)
	assert.InDelta(t, 0.3, ev.Pipeline.OverallProgress, 1e-9)
}

func TestBus_PublishStageEventDeliversToAllSubscribers(t *testing.T) {
	persister := &fakePersister{}
	bus := NewBus(persister)

	ch1, unsub1, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	defer unsub1()
	ch2, unsub2, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	defer unsub2()

	// Drain the seeded initial-snapshot event on both channels first.
	recvWithTimeout(t, ch1, time.Second)
	recvWithTimeout(t, ch2, time.Second)

	bus.PublishStageEvent(context.Background(), "p1", pipeline.StageRecord{
		Type: pipeline.StageIndex, Status: pipeline.StatusRunning, Progress: 50,
	})

	ev1, ok := recvWithTimeout(t, ch1, time.Second)
	require.True(t, ok)
	ev2, ok := recvWithTimeout(t, ch2, time.Second)
	require.True(t, ok)

	for _, ev := range []Event{ev1, ev2} {
		require.Equal(t, EventStage, ev.Kind)
		require.NotNil(t, ev.Stage)
		assert.Equal(t, "INDEX", ev.Stage.Type)
		assert.Equal(t, 50, ev.Stage.Progress)
	}
	assert.Equal(t, 1, persister.count())
}

func TestBus_TerminalPipelineEventClosesSubscriberChannel(t *testing.T) {
	persister := &fakePersister{}
	bus := NewBus(persister)

	ch, unsubscribe, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	defer unsubscribe()
	recvWithTimeout(t, ch, time.Second) // seeded snapshot

	bus.PublishPipelineEvent(context.Background(), "p1", pipeline.PipelineRecord{
		ID: "p1", Completed: true,
	})

	ev, ok := recvWithTimeout(t, ch, time.Second)
	require.True(t, ok)
	assert.True(t, ev.Terminal())

	_, stillOpen := recvWithTimeout(t, ch, 200*time.Millisecond)
	assert.False(t, stillOpen, "channel must be closed once the pipeline reaches a terminal state")
}

func TestBus_SlowSubscriberDropsEventsRatherThanBlockingPublisher(t *testing.T) {
	persister := &fakePersister{}
	bus := NewBus(persister)

	ch, unsubscribe, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	defer unsubscribe()
	recvWithTimeout(t, ch, time.Second) // seeded snapshot, leaves queue empty

	// Flood past the bounded queue without ever reading — publish must
	// never block the calling goroutine.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberQueueSize*4; i++ {
			bus.PublishStageEvent(context.Background(), "p1", pipeline.StageRecord{
				Type: pipeline.StageIndex, Status: pipeline.StatusRunning, Progress: i % 100,
			})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Equal(t, subscriberQueueSize*4, persister.count(), "every event must still be persisted even if dropped locally")
}

func TestBus_UnsubscribeRemovesSubscriberFromFanout(t *testing.T) {
	persister := &fakePersister{}
	bus := NewBus(persister)

	ch, unsubscribe, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	recvWithTimeout(t, ch, time.Second) // seeded snapshot
	unsubscribe()

	bus.PublishStageEvent(context.Background(), "p1", pipeline.StageRecord{Type: pipeline.StageIndex, Progress: 10})

	_, ok := recvWithTimeout(t, ch, 200*time.Millisecond)
	assert.False(t, ok, "unsubscribed channel must not receive further events (or must already be drained/closed)")
}

type fakeRemoteListener struct {
	mu          sync.Mutex
	subscribed  []string
	unsubscribe []string
}

func (f *fakeRemoteListener) SubscribePipeline(ctx context.Context, pipelineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, pipelineID)
	return nil
}

func (f *fakeRemoteListener) UnsubscribePipeline(ctx context.Context, pipelineID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribe = append(f.unsubscribe, pipelineID)
	return nil
}

func TestBus_FirstSubscribeListensLastUnsubscribeUnlistens(t *testing.T) {
	listener := &fakeRemoteListener{}
	bus := NewBus(&fakePersister{})
	bus.Listener = listener

	ch1, unsub1, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	ch2, unsub2, err := bus.Subscribe(context.Background(), "p1")
	require.NoError(t, err)
	recvWithTimeout(t, ch1, time.Second)
	recvWithTimeout(t, ch2, time.Second)

	listener.mu.Lock()
	assert.Equal(t, []string{"p1"}, listener.subscribed, "only the first subscriber triggers a remote LISTEN")
	listener.mu.Unlock()

	unsub1()
	listener.mu.Lock()
	assert.Empty(t, listener.unsubscribe, "must not UNLISTEN while a second subscriber remains")
	listener.mu.Unlock()

	unsub2()
	require.Eventually(t, func() bool {
		listener.mu.Lock()
		defer listener.mu.Unlock()
		return len(listener.unsubscribe) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestOverallProgressSnapshot_CurrentStageReflectsRunningStage(t *testing.T) {
	snap := pipelineSnapshot(pipeline.PipelineRecord{
		ID: "p1",
		Stages: []pipeline.StageRecord{
			{Type: pipeline.StageSummary, Status: pipeline.StatusCompleted, Progress: 100},
			{Type: pipeline.StageIndex, Status: pipeline.StatusRunning, Progress: 40},
		},
	})
	assert.Equal(t, "INDEX", snap.CurrentStage)
	require.Len(t, snap.Stages, 2)
}
