package chunker

// Config enumerates the chunker's recognized options, per spec.md §4.B —
// an explicit option record rather than a dynamic config object (Design
// Note, spec.md §9).
type Config struct {
	TargetChunkSize int     `yaml:"target_chunk_size"`
	MinChunkSize    int     `yaml:"min_chunk_size"`
	MaxChunkSize    int     `yaml:"max_chunk_size"`
	Overlap         int     `yaml:"overlap"`

	UseSentence           bool    `yaml:"use_sentence"`
	UseStructure          bool    `yaml:"use_structure"`
	UseSemantic           bool    `yaml:"use_semantic"`
	UseContextWindow      bool    `yaml:"use_context_window"`
	UseSlidingWindow      bool    `yaml:"use_sliding_window"`
	ExtractKeyInfo        bool    `yaml:"extract_key_info"`
	DedupSemanticThreshold float64 `yaml:"dedup_semantic_threshold"`
}

// DefaultConfig returns spec.md §4.B's documented defaults.
func DefaultConfig() Config {
	return Config{
		TargetChunkSize:        1000,
		MinChunkSize:           500,
		MaxChunkSize:           2000,
		Overlap:                200,
		UseSentence:            true,
		UseStructure:           true,
		UseSemantic:            true,
		UseContextWindow:       true,
		UseSlidingWindow:       false,
		ExtractKeyInfo:         true,
		DedupSemanticThreshold: 0.92,
	}
}

// Validate reports ChunkingError for an inconsistent config (min > max),
// per spec.md §4.B.
func (c Config) Validate() error {
	if c.MinChunkSize > c.MaxChunkSize {
		return &ChunkingError{Reason: "min_chunk_size > max_chunk_size"}
	}
	if c.TargetChunkSize <= 0 {
		return &ChunkingError{Reason: "target_chunk_size must be positive"}
	}
	if c.DedupSemanticThreshold < 0 || c.DedupSemanticThreshold > 1 {
		return &ChunkingError{Reason: "dedup_semantic_threshold must be in [0,1]"}
	}
	return nil
}
