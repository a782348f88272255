package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Artifact holds the schema definition for the Artifact entity.
// A produced, persisted result of analysis keyed by document and type,
// versioned monotonically within (document_id, type).
type Artifact struct {
	ent.Schema
}

// Fields of the Artifact.
func (Artifact) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("artifact_id").
			Unique().
			Immutable(),
		field.String("document_id").
			Immutable(),
		field.Enum("type").
			Values("summary", "outline", "knowledge_graph", "analysis_report").
			Immutable(),
		field.Int("version").
			Immutable().
			Comment("Monotonically increasing within document_id+type"),
		field.JSON("content", map[string]interface{}{}).
			Optional().
			Comment("Inline JSON content, when small enough"),
		field.String("blob_ref").
			Optional().
			Nillable().
			Comment("Blob store reference, when content is large"),
		field.String("content_hash").
			Comment("For idempotence: writing identical content twice must not bump meaning"),
		field.String("model_used").
			Optional().
			Nillable(),
		field.Int("token_usage").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Artifact.
func (Artifact) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("artifacts").
			Field("document_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Artifact.
func (Artifact) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "type", "version").
			Unique(),
	}
}
