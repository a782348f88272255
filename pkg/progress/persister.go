package progress

import (
	"context"

	"github.com/codeready-toolchain/dpa/pkg/models"
)

// Persister is the capability port the Bus writes each event through
// before fanout (spec.md §4.H: "persist then notify, never the reverse
// — a subscriber must never see an event the store doesn't already
// have"), and reads from to serve the polling fallback and a new
// subscriber's initial snapshot. Implemented by pkg/services'
// ProgressPersister, which inserts the event row and issues pg_notify in
// one transaction.
type Persister interface {
	// RecordEvent appends the event to durable storage. It runs in a
	// transaction of its own, after the stage/pipeline mutation that
	// produced the event has already been stored, so a reader can see
	// the mutation shortly before the matching event.
	RecordEvent(ctx context.Context, pipelineID string, event Event) error

	// Snapshot returns the current progress state for pipelineID, used
	// both by get_progress and to seed a newly-subscribed client before
	// any live events arrive.
	Snapshot(ctx context.Context, pipelineID string) (models.ProgressSnapshot, error)
}
