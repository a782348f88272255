// Package progress implements the Progress Bus (spec.md §4.H): it fans
// out ProgressEvents to per-pipeline subscribers, persists each event
// before delivery, and serves a polling snapshot fallback.
package progress

import (
	"github.com/codeready-toolchain/dpa/pkg/models"
)

// EventKind distinguishes a stage-level update from a pipeline-level
// update. A pipeline-level event whose pipeline is completed or
// interrupted ends a subscriber's lazy sequence of events (see
// Terminal); a failed stage on its own does not.
type EventKind string

const (
	EventStage    EventKind = "stage"
	EventPipeline EventKind = "pipeline"
)

// Event is the payload delivered to subscribers and persisted before
// fanout. It wraps the same snapshot types get_progress returns so a
// polling client and a streaming client see identical shapes.
type Event struct {
	Kind     EventKind              `json:"kind"`
	Stage    *models.StageSnapshot  `json:"stage,omitempty"`
	Pipeline models.ProgressSnapshot `json:"pipeline"`
}

// Terminal reports whether this event closes the subscriber's sequence:
// a pipeline-level event whose pipeline is completed or interrupted.
func (e Event) Terminal() bool {
	return e.Kind == EventPipeline && (e.Pipeline.Completed || e.Pipeline.Interrupted)
}

// ChannelName is the NOTIFY channel / local fan-out key for a pipeline's
// progress stream. Kept short: Postgres channel identifiers are capped
// at 63 bytes. Exported so the persistence layer that issues pg_notify
// and this package's listener agree on the exact channel string.
func ChannelName(pipelineID string) string {
	return "dpa_progress_" + pipelineID
}

func channelName(pipelineID string) string {
	return ChannelName(pipelineID)
}
