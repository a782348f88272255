package progress

import (
	"context"
	"log/slog"
	"sync"

	"github.com/codeready-toolchain/dpa/pkg/models"
	"github.com/codeready-toolchain/dpa/pkg/pipeline"
)

// subscriberQueueSize bounds how many undelivered events a slow
// subscriber may accumulate before it is dropped, per spec.md §4.H:
// "a subscriber that cannot keep up is disconnected rather than made to
// block the publisher".
const subscriberQueueSize = 32

// subscriber is one live channel-based listener on a pipeline's events.
type subscriber struct {
	ch     chan Event
	cancel context.CancelFunc
}

// Bus is the in-process Progress Bus: it fans events out to local Go
// channel subscribers keyed by pipeline_id, persisting each event first.
// It also satisfies pipeline.Publisher, so a pkg/pipeline.Runner can use
// a Bus directly without either package importing the other's concrete
// types beyond the small Publisher seam.
//
// Cross-pod delivery (a subscriber on a different process than the one
// running the pipeline) is handled by wrapping a Bus with a
// NotifyListener, which re-publishes remote NOTIFYs into the same local
// subscriber map (see listener.go).
type Bus struct {
	Persister Persister
	Listener  remoteListener
	Logger    *slog.Logger

	mu   sync.Mutex
	subs map[string]map[int]*subscriber // pipeline_id -> subscriber id -> subscriber
	next int
}

// remoteListener is the subset of *NotifyListener a Bus needs to drive
// cross-pod LISTEN on first subscriber / UNLISTEN on last, kept as an
// interface so Bus can be tested without a real Postgres connection.
type remoteListener interface {
	SubscribePipeline(ctx context.Context, pipelineID string) error
	UnsubscribePipeline(ctx context.Context, pipelineID string) error
}

// NewBus returns a Bus backed by persister. persister may be nil only in
// tests that don't need the persist-then-notify guarantee.
func NewBus(persister Persister) *Bus {
	return &Bus{
		Persister: persister,
		Logger:    slog.Default(),
		subs:      make(map[string]map[int]*subscriber),
	}
}

// Subscribe registers a new listener on pipelineID's event stream and
// returns a receive-only channel plus an unsubscribe func. The channel
// is seeded with the pipeline's current snapshot (from Persister) so a
// late subscriber doesn't miss prior progress, per spec.md §4.H.
func (b *Bus) Subscribe(ctx context.Context, pipelineID string) (<-chan Event, func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	ch := make(chan Event, subscriberQueueSize)

	b.mu.Lock()
	first := b.subs[pipelineID] == nil
	if first {
		b.subs[pipelineID] = make(map[int]*subscriber)
	}
	id := b.next
	b.next++
	b.subs[pipelineID][id] = &subscriber{ch: ch, cancel: cancel}
	b.mu.Unlock()

	if first && b.Listener != nil {
		if err := b.Listener.SubscribePipeline(ctx, pipelineID); err != nil {
			b.Logger.Warn("progress: cross-pod LISTEN failed", "pipeline_id", pipelineID, "error", err)
		}
	}

	unsubscribe := func() {
		cancel()
		b.mu.Lock()
		set, ok := b.subs[pipelineID]
		var last bool
		if ok {
			delete(set, id)
			last = len(set) == 0
			if last {
				delete(b.subs, pipelineID)
			}
		}
		b.mu.Unlock()
		if last && b.Listener != nil {
			if err := b.Listener.UnsubscribePipeline(context.Background(), pipelineID); err != nil {
				b.Logger.Warn("progress: cross-pod UNLISTEN failed", "pipeline_id", pipelineID, "error", err)
			}
		}
	}

	if b.Persister != nil {
		if snap, err := b.Persister.Snapshot(ctx, pipelineID); err == nil {
			select {
			case ch <- Event{Kind: EventPipeline, Pipeline: snap}:
			default:
			}
		}
	}

	go func() {
		<-subCtx.Done()
	}()

	return ch, unsubscribe, nil
}

// publish persists then fans event out to every live local subscriber
// of pipelineID, dropping (never blocking on) any subscriber whose
// queue is full.
func (b *Bus) publish(ctx context.Context, pipelineID string, event Event) {
	if b.Persister != nil {
		if err := b.Persister.RecordEvent(ctx, pipelineID, event); err != nil {
			b.Logger.Warn("progress: persist failed", "pipeline_id", pipelineID, "error", err)
		}
	}
	b.broadcastLocal(pipelineID, event)
}

// broadcastLocal delivers event to this process's subscribers only,
// without persisting — used both by publish and by a NotifyListener
// re-publishing an event that originated (and was already persisted) on
// another pod.
func (b *Bus) broadcastLocal(pipelineID string, event Event) {
	b.mu.Lock()
	set := b.subs[pipelineID]
	for id, s := range set {
		select {
		case s.ch <- event:
		default:
			b.Logger.Warn("progress: subscriber queue full, dropping subscriber", "pipeline_id", pipelineID)
			delete(set, id)
			s.cancel()
			close(s.ch)
		}
	}
	b.mu.Unlock()

	if event.Terminal() {
		b.closeAll(pipelineID)
	}
}

// closeAll cancels and removes every subscriber of pipelineID, run once
// the pipeline reaches a terminal state so the lazy sequence ends. A
// later call to an individual subscriber's unsubscribe func becomes a
// no-op against an already-cleared map entry.
func (b *Bus) closeAll(pipelineID string) {
	b.mu.Lock()
	set := b.subs[pipelineID]
	delete(b.subs, pipelineID)
	b.mu.Unlock()

	for _, s := range set {
		s.cancel()
		close(s.ch)
	}
	if len(set) > 0 && b.Listener != nil {
		if err := b.Listener.UnsubscribePipeline(context.Background(), pipelineID); err != nil {
			b.Logger.Warn("progress: cross-pod UNLISTEN failed", "pipeline_id", pipelineID, "error", err)
		}
	}
}

// PublishStageEvent implements pipeline.Publisher.
func (b *Bus) PublishStageEvent(ctx context.Context, pipelineID string, snapshot pipeline.StageRecord) {
	stage := stageSnapshot(snapshot)
	b.publish(ctx, pipelineID, Event{Kind: EventStage, Stage: &stage})
}

// PublishPipelineEvent implements pipeline.Publisher.
func (b *Bus) PublishPipelineEvent(ctx context.Context, pipelineID string, snapshot pipeline.PipelineRecord) {
	b.publish(ctx, pipelineID, Event{Kind: EventPipeline, Pipeline: pipelineSnapshot(snapshot)})
}

var _ pipeline.Publisher = (*Bus)(nil)

func stageSnapshot(s pipeline.StageRecord) models.StageSnapshot {
	return models.StageSnapshot{
		Type:      string(s.Type),
		Status:    string(s.Status),
		Progress:  s.Progress,
		Message:   s.Message,
		ErrorCode: s.ErrorCode,
	}
}

// Snapshot converts a pipeline.PipelineRecord into the wire shape used by
// both get_pipeline_progress and the subscribe_pipeline event stream, so
// polling and streaming clients always see identical field names.
func Snapshot(p pipeline.PipelineRecord) models.ProgressSnapshot {
	return pipelineSnapshot(p)
}

func pipelineSnapshot(p pipeline.PipelineRecord) models.ProgressSnapshot {
	snap := models.ProgressSnapshot{
		PipelineID:      p.ID,
		DocID:           p.DocumentID,
		OverallProgress: p.OverallProgress,
		Interrupted:     p.Interrupted,
		Completed:       p.Completed,
		CanResume:       p.CanResume,
	}
	for _, s := range p.Stages {
		snap.Stages = append(snap.Stages, stageSnapshot(s))
		if s.Status == pipeline.StatusRunning {
			snap.CurrentStage = string(s.Type)
		}
	}
	return snap
}
