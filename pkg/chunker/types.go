// Package chunker implements the Hybrid Chunker: content-aware text
// segmentation combining sentence/structure/semantic strategies plus
// contextual and sliding windows, producing chunks scored for retrieval
// suitability (spec.md §4.B).
package chunker

// Type mirrors the ent Chunk.chunk_type enum.
type Type string

const (
	TypeBody    Type = "body"
	TypeHeading Type = "heading"
	TypeList    Type = "list"
	TypeCode    Type = "code"
	TypeTable   Type = "table"
	TypeKeyInfo Type = "key_info"
)

// Strategy identifies which chunker pass produced a chunk, carried on
// ChunkingOutcome per the Design Note in spec.md §9 ("model the chunker
// fallback as an explicit outcome, not an exception").
type Strategy string

const (
	StrategyPrimary       Strategy = "primary"
	StrategyFallback      Strategy = "fallback"
	StrategySlidingWindow Strategy = "sliding_window"
)

// Chunk is the chunker's in-memory result type; pkg/services persists it
// into ent.Chunk rows and pkg/store/vector mirrors its embedding.
type Chunk struct {
	DocID         string
	StartChar     int
	EndChar       int
	Text          string
	ContentHash   string
	CharCount     int
	ChunkType     Type
	Strategy      Strategy
	QualityScore  float64
	ContextWindow string
	Embedding     []float32
	Metadata      map[string]any
}

// ChunkingOutcome is the result of Chunk(): a closed variant instead of an
// error-for-control-flow fallback path.
type ChunkingOutcome struct {
	Chunks   []Chunk
	Strategy Strategy // "primary" if semantic services were available throughout, else "fallback"
	Warning  string   // set when a fallback occurred
}
