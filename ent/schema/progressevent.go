package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ProgressEvent holds the schema definition for the ProgressEvent entity.
// Durable log for the Progress Bus (pkg/progress): every event delivered
// over NOTIFY is first persisted here in the same transaction (see
// pkg/services/progress_persister.go's RecordEvent). No code reads these
// rows back; a late subscriber is seeded with the current pipeline
// snapshot instead.
type ProgressEvent struct {
	ent.Schema
}

// Fields of the ProgressEvent.
func (ProgressEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			StorageKey("event_id"),
		field.String("pipeline_id").
			Immutable(),
		field.String("channel").
			Immutable().
			Comment("progress.ChannelName(pipeline_id)"),
		field.JSON("payload", map[string]interface{}{}).
			Immutable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Indexes of the ProgressEvent.
func (ProgressEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("channel", "id"),
		index.Fields("pipeline_id"),
	}
}
