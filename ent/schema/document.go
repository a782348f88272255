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

// Document holds the schema definition for the Document entity.
type Document struct {
	ent.Schema
}

// Fields of the Document.
func (Document) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("doc_id").
			Unique().
			Immutable(),
		field.String("filename"),
		field.String("mime").
			Comment("Source content type, e.g. 'application/pdf'"),
		field.Int64("bytes").
			Comment("Source size in bytes"),
		field.String("owner_id"),
		field.String("project_id"),
		field.Enum("current_status").
			Values("uploaded", "summarizing", "summarized", "indexing", "indexed", "analyzing", "analyzed", "failed").
			Default("uploaded"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
		field.String("blob_ref").
			Optional().
			Nillable().
			Comment("Blob store key for the original upload"),
	}
}

// Edges of the Document.
func (Document) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("pipelines", Pipeline.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("chunks", Chunk.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("artifacts", Artifact.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the Document.
func (Document) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("project_id"),
		index.Fields("owner_id"),
		index.Fields("current_status"),
		index.Fields("project_id", "current_status"),
	}
}

// Annotations for PostgreSQL-specific features.
func (Document) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
