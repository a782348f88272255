package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Chunk holds the schema definition for the Chunk entity.
// A contiguous text span of a Document with metadata and an embedding.
type Chunk struct {
	ent.Schema
}

// Fields of the Chunk.
func (Chunk) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("chunk_id").
			Unique().
			Immutable(),
		field.String("document_id").
			Immutable(),
		field.Int("start_char").
			Immutable(),
		field.Int("end_char").
			Immutable(),
		field.String("content_hash").
			Immutable(),
		field.Int("char_count").
			Immutable(),
		field.Text("text").
			Immutable(),
		field.Enum("chunk_type").
			Values("body", "heading", "list", "code", "table", "key_info").
			Default("body"),
		field.String("strategy").
			Comment("Which chunker strategy produced this chunk: primary|fallback|sliding_window"),
		field.Float("quality_score").
			Comment("[0,1]"),
		field.Text("context_window").
			Optional().
			Nillable().
			Comment("Neighboring text for rerank, not part of the retrieval text itself"),
		field.Bytes("embedding").
			Optional().
			Comment("Serialized float32 vector, mirrored into the vector store"),
		field.JSON("metadata", map[string]interface{}{}).
			Optional(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the Chunk.
func (Chunk) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("document", Document.Type).
			Ref("chunks").
			Field("document_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the Chunk.
func (Chunk) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("document_id", "start_char"),
		index.Fields("document_id", "content_hash").
			Unique(),
		index.Fields("chunk_type"),
	}
}
