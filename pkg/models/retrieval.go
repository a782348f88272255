package models

// RetrieveOptions configures the Hybrid Retriever (spec.md §4.E, §6).
type RetrieveOptions struct {
	TopKFinal         int     `json:"top_k_final,omitempty"`
	TopKIntermediate  int     `json:"top_k_intermediate,omitempty"`
	WeightVector      float64 `json:"weight_vector,omitempty"`
	WeightKeyword     float64 `json:"weight_keyword,omitempty"`
	WeightGraph       float64 `json:"weight_graph,omitempty"`
	Rerank            bool    `json:"rerank,omitempty"`
	Filters           map[string]string `json:"filters,omitempty"`
}

// RetrievedChunk is one ranked result of `retrieve`.
type RetrievedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	SourceTag  string  `json:"source_tag"` // vector|keyword|graph|fused
}

// RetrieveResult is the response of `retrieve` (spec.md §6).
type RetrieveResult struct {
	Results []RetrievedChunk `json:"results"`
}

// DefaultRetrieveOptions returns spec.md §4.E's documented defaults.
func DefaultRetrieveOptions() RetrieveOptions {
	return RetrieveOptions{
		TopKFinal:        20,
		TopKIntermediate: 50,
		WeightVector:     0.4,
		WeightKeyword:    0.35,
		WeightGraph:      0.25,
		Rerank:           true,
	}
}
