package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Stage holds the schema definition for the Stage entity.
// Belongs to exactly one Pipeline; ordering among stages of one pipeline
// is fixed by Type (SUMMARY < INDEX < GRAPH < ANALYSIS), not by a
// freestanding index field like the teacher's chain stages.
type Stage struct {
	ent.Schema
}

// Fields of the Stage.
func (Stage) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("stage_id").
			Unique().
			Immutable(),
		field.String("pipeline_id").
			Immutable(),
		field.Enum("type").
			Values("SUMMARY", "INDEX", "GRAPH", "ANALYSIS").
			Immutable(),
		field.Enum("status").
			Values("pending", "running", "completed", "failed", "cancelled").
			Default("pending"),
		field.Int("progress").
			Default(0).
			Comment("[0,100]"),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.Int("duration_seconds").
			Optional().
			Nillable(),
		field.Bool("can_interrupt").
			Default(true),
		field.String("message").
			Optional().
			Nillable(),
		field.JSON("result", map[string]interface{}{}).
			Optional().
			Comment("Checkpoint / stage output, or a blob reference"),
		field.String("error_code").
			Optional().
			Nillable(),
		field.String("error_message").
			Optional().
			Nillable(),
	}
}

// Edges of the Stage.
func (Stage) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("pipeline", Pipeline.Type).
			Ref("stages").
			Field("pipeline_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Stage.
func (Stage) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("pipeline_id", "type").
			Unique(),
		index.Fields("status"),
	}
}
