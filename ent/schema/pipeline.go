package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Pipeline holds the schema definition for the Pipeline entity.
// A concrete execution of a selected subset of SUMMARY/INDEX/GRAPH/ANALYSIS
// stages over a document.
type Pipeline struct {
	ent.Schema
}

// Fields of the Pipeline.
func (Pipeline) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("pipeline_id").
			Unique().
			Immutable(),
		field.String("document_id").
			Immutable(),
		field.JSON("options", map[string]interface{}{}).
			Comment("Which stages were requested and at what depth"),
		field.String("current_stage").
			Optional().
			Nillable(),
		field.Float("overall_progress").
			Default(0).
			Comment("[0,1]"),
		field.Bool("interrupted").
			Default(false),
		field.Bool("completed").
			Default(false),
		field.Bool("can_resume").
			Default(false),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.JSON("ext", map[string]interface{}{}).
			Optional().
			Comment("Free-form extension bag"),
		field.String("pod_id").
			Optional().
			Nillable().
			Comment("For multi-replica coordination"),
		field.Time("last_interaction_at").
			Optional().
			Nillable().
			Comment("For orphan detection"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Pipeline.
func (Pipeline) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("pipelines").
			Field("document_id").
			Unique().
			Required().
			Immutable(),
		edge.To("stages", Stage.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Pipeline.
//
// Testable Property 3 / spec.md §5 "at most one active pipeline per
// document" is enforced by the partial unique index below: only one row
// per document_id may have completed=false AND interrupted=false.
func (Pipeline) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "completed", "interrupted").
			Unique().
			Annotations(entsql.IndexWhere("completed = false AND interrupted = false")),
		index.Fields("completed"),
		index.Fields("pod_id"),
		index.Fields("last_interaction_at"),
	}
}

// Annotations for PostgreSQL-specific features.
func (Pipeline) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
